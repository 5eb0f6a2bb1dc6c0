package constants

// DocStatus is the terminal (or latest) state of one document in a batch run.
type DocStatus string

const (
	DocStatusDiscovered DocStatus = "DISCOVERED" // found in the bills folder
	DocStatusClassified DocStatus = "CLASSIFIED" // vendor identified
	DocStatusExtracted  DocStatus = "EXTRACTED"  // raw fields pulled from text
	DocStatusNormalized DocStatus = "NORMALIZED" // record built, folded into a charge
	DocStatusSkipped    DocStatus = "SKIPPED"    // removed from the batch, siblings unaffected
	DocStatusPriced     DocStatus = "PRICED"     // contributed to a priced charge
	DocStatusDropped    DocStatus = "DROPPED"    // charge had no tenant profile
)
