package badger

import "fmt"

// Key prefixes for different data types
const (
	collectionMetaPrefix  = "colmeta"
	collectionEntryPrefix = "colent"
)

// makeCollectionMetaKey generates the key holding a collection's metadata.
func makeCollectionMetaKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionMetaPrefix, name))
}

// makeEntryKey generates a key for an index entry within a collection.
// Format: prefix:collection:id
func makeEntryKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", collectionEntryPrefix, collection, id))
}

// makeEntryScanPrefix generates the iteration prefix covering every entry of
// a collection.
func makeEntryScanPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", collectionEntryPrefix, collection))
}
