package constants

const (
	ViewPipeline    = "view_pipeline"
	EditPipeline    = "edit_pipeline"
	SendEmail       = "send_email"
	ViewLedger      = "view_ledger"
	EditLedger      = "edit_ledger"
	DeleteProject   = "delete_project"
	ManageOperators = "manage_operators"
)
