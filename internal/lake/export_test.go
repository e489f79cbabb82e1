package lake

var (
	GlobRoot         = globRoot
	DownloadPrefixes = downloadPrefixes
)
