package cli

const (
	FlagHome         = "home"
	FlagFormat       = "format"
	FlagOut          = "out"
	FlagValidateKeys = "validate-keys"
	FlagMoveIDFirst  = "move-id-first"
	FlagMaxSize      = "max-document-size"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)
