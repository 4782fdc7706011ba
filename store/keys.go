package store

// Key derivation for named structures. All backends share the same layout so
// that a queue created by one process is visible to every other process:
//
//	{namespace}:queue:{name}        - list key backing a queue
//	{namespace}:queue:{name}:wake   - bus channel waking queue consumers
//	{namespace}:map:{name}          - hash key backing a map
//	{namespace}:set:{name}          - set key backing a set

// QueueKey returns the list key for a named queue.
func QueueKey(namespace, name string) string {
	return namespace + ":queue:" + name
}

// QueueChannel returns the bus channel for a named queue.
func QueueChannel(namespace, name string) string {
	return namespace + ":queue:" + name + ":wake"
}

// MapKey returns the hash key for a named map.
func MapKey(namespace, name string) string {
	return namespace + ":map:" + name
}

// SetKey returns the set key for a named set.
func SetKey(namespace, name string) string {
	return namespace + ":set:" + name
}
