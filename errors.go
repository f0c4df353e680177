package setxml

import "fmt"

// Stage of the generation of a card.
type Stage string

const (
	// StageFetch is the retrieval of the card pages.
	StageFetch Stage = "fetch"
	// StageExtract is the extraction of the attributes from the pages.
	StageExtract Stage = "extract"
	// StageAssemble is the merge of the oracle and printed attributes.
	StageAssemble Stage = "assemble"
	// StageValidate is the sanity check of the assembled record.
	StageValidate Stage = "validate"
	// StageWrite is the serialization of the set document.
	StageWrite Stage = "write"
)

// CardError is returned when the generation of a set is aborted because of
// one of its cards.
type CardError struct {
	// Set code.
	Set string
	// ID of the card. For the write stage, it is the last card processed.
	ID    string
	Stage Stage
	Err   error
}

func (e *CardError) Error() string {
	if len(e.ID) == 0 {
		return fmt.Sprintf("set %s: %s failed: %v", e.Set, e.Stage, e.Err)
	}
	return fmt.Sprintf("set %s, card %s: %s failed: %v", e.Set, e.ID, e.Stage, e.Err)
}

func (e *CardError) Unwrap() error {
	return e.Err
}
