// Package entitycache implements a typed, shared entity cache over a remote
// hash store. Cooperating processes read and write per-entity scalar fields and
// named numeric maps under one namespace; every write refreshes the entity's
// last-activity timestamp and registers its keys in a global index.
//
// Layout (ns defaults to "EntityCache"):
//
//	<ns>:<id>          - primary hash: field -> encoded scalar
//	<ns>:<id>:<sub>    - named sub-hash: field -> double
//	<ns>-Keys          - set of every composite key ever written
//	<ns>-TimeStamps    - hash: id -> last activity (ISO-8601 with offset)
//
// Scalars are encoded by package codec. Bulk reads recover field kinds
// heuristically (integer, then double, then boolean sentinel, then string).
//
// Ordering: every operation holds the instance's gate for its full duration
// (gate.Full by default), so operations on one Cache are totally ordered. A
// write spans several round trips; other instances and processes can observe
// the intermediate state, and nothing is rolled back when a later round trip
// fails.
//
//	c, _ := entitycache.New(entitycache.Options{Store: st})
//	_ = c.SetFloat(ctx, 7, "lat", 52.1)
//	_ = c.SetMap(ctx, 7, "series", map[string]float64{"t0": 1.5})
//	e, _ := c.GetEntity(ctx, 7) // e.Fields["lat"] == codec.Double(52.1)
package entitycache
