package domain

// KeyPrefix namespaces every key this system writes to the store.
const KeyPrefix = "fuza:"
