package domain

// ScanState tells the client which screen follows a scan
type ScanState string

const (
	ScanStateReady          ScanState = "ready"
	ScanStateFoundInHistory ScanState = "found_in_history"
	ScanStateShowingDetails ScanState = "showing_details"
)

// DecodedBarcode is a barcode symbol found in an image
type DecodedBarcode struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// ScanResult is returned after a barcode image has been processed
type ScanResult struct {
	State      ScanState       `json:"state"`
	Barcode    *DecodedBarcode `json:"barcode,omitempty"`
	Product    *Product        `json:"product,omitempty"`
	History    *HistoryEntry   `json:"history,omitempty"`
	Assessment *Assessment     `json:"assessment,omitempty"` // stored analysis on a history hit
}

// FlowStep names a screen in the client's profile and scan flow
type FlowStep string

const (
	StepWelcome         FlowStep = "welcome"
	StepPersonalInfo    FlowStep = "personal_info"
	StepHealthInfo      FlowStep = "health_info"
	StepBarcodeScanning FlowStep = "barcode_scanning"
	StepResults         FlowStep = "results"
)

// FlowType distinguishes first-time onboarding from a later profile update
type FlowType string

const (
	FlowOnboarding    FlowType = "onboarding"
	FlowProfileUpdate FlowType = "profile_update"
)
