package cli

var (
	GetIndexConfig = getIndexConfig
	WriteRoster    = writeRoster
	ParseGCSPath   = parseGCSPath
)
