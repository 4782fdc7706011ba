// Package store defines the backend contracts that Elephant's data
// structures are built on. Each contract is small and mechanical so that a
// vendor client maps onto it directly:
//
//   - List: an ordered, persistent list with push-to-tail / pop-from-head
//     and a length query. The pop must be atomic in the backend so two
//     processes never receive the same element.
//   - ListNotifier: optional capability coupling a list push with a bus
//     publish in a single backend round trip (e.g. a Redis MULTI/EXEC).
//   - Bus: best-effort publish/subscribe signaling. At-most-once per
//     subscriber, no ordering, no persistence, no payload guarantee.
//   - Hash: a field → value map under a single key.
//   - Set: an unordered collection of unique members under a single key.
//
// Backends: Redis (production, store/redisstore), embedded Pebble
// (single-node durable lists, store/pebblestore), and in-memory
// (tests and local development, store/memstore).
package store
