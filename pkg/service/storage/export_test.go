package storage

// Exported for testing
var ObjectName = objectName
