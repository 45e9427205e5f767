// Package icontrol provides a complete client for the iControl SOAP API
// of F5 BIG-IP appliances.
//
// The appliance publishes one WSDL per namespace; this library resolves a
// dotted namespace path into a schema-aware client at runtime, so every
// method of every module works without generated bindings:
//   - Dynamic namespace resolution ("LocalLB.Pool" and friends)
//   - Schema-typed argument marshalling and result normalization
//   - Sessions, transactions, and namespace discovery
//
// # Architecture
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  bigip/          High-level client API                  │
//	├─────────────────────────────────────────────────────────┤
//	│  wsdl/           WSDL parsing + schema type model       │
//	├─────────────────────────────────────────────────────────┤
//	│  soap/           SOAP 1.1 rpc/encoded message layer     │
//	├─────────────────────────────────────────────────────────┤
//	│  soap/transport  HTTPS portal transport + auth          │
//	└─────────────────────────────────────────────────────────┘
//
// # Quick Start
//
//	cfg := bigip.DefaultConfig()
//	cfg.Username = "admin"
//	cfg.Password = "secret"
//	c, err := bigip.New(ctx, "bigip.example.com", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pool, err := c.Resolve(ctx, "LocalLB.Pool")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pools, err := pool.Call(ctx, "get_list")
package icontrol
