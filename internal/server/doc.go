// Package server exposes decoded readings over HTTP.
//
// # Endpoints
//
//	GET /healthz            {"status":"ok","version":"ampwatch/...","clients":N}
//	GET /metrics            Prometheus exposition (when a registry is supplied)
//	GET /readings?limit=N   newest stored readings, N defaults to 50 and is capped at 1000
//	GET /ws                 WebSocket live feed, one JSON report.Document per message
//
// The live feed is served by a Hub, which is also a pipeline sink. Only readings
// whose CRC matched exactly are broadcast. Clients that fall behind by more than the
// per-client buffer are disconnected rather than slowing the pipeline down.
//
// # Lifecycle
//
//	srv := server.New(server.Config{Listen: ":8080"}, hub, st, metrics.Handler(reg))
//	addr, err := srv.Listen()
//	// advertise addr over mDNS ...
//	err = srv.Serve(ctx) // returns after ctx is cancelled and shutdown completes
//
// # Thread Safety
//
// Hub methods are safe for concurrent use; each client has its own writer goroutine.
package server
