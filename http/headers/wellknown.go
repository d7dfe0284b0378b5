package headers

// Field names the server reads or writes by itself. Lookups are case-insensitive, so
// the spelling only matters for the fields being written.
const (
	Connection       = "Connection"
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	Date             = "Date"
	Server           = "Server"
	TransferEncoding = "Transfer-Encoding"
)

// Tokens of the fields above.
const (
	Close    = "close"
	Chunked  = "chunked"
	Identity = "identity"
)
