package notion

// Exported for testing
var DocumentBlocks = documentBlocks
