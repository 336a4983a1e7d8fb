package domain

// KeyPrefix namespaces every key written to the backing store.
const KeyPrefix = "qseq:"
