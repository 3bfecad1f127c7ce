package convert

const (
	MsgNoFilePart       = "No file part"
	MsgNoSelectedFile   = "No selected file"
	MsgInvalidFormat    = "Invalid format"
	MsgFileTooLarge     = "File too large"
	MsgConversionFailed = "Conversion failed"
)
