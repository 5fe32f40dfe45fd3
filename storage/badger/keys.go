package badger

import "fmt"

// Key prefixes for different data types
const (
	ledgerRecordPrefix = "ledrec"
	ledgerHashPrefix   = "ledhash"
	vectorEntryPrefix  = "vecrec"
)

// makeLedgerKey generates a key for a processing state by attachment ID.
func makeLedgerKey(attachmentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", ledgerRecordPrefix, attachmentID))
}

// makeHashKey generates a key for the content-hash index.
func makeHashKey(contentHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", ledgerHashPrefix, contentHash))
}

// makeVectorKey generates a key for an index entry by vector ID.
func makeVectorKey(vectorID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", vectorEntryPrefix, vectorID))
}
