// Package logfields defines canonical structured log field names so keys do
// not drift across packages.
package logfields

import "log/slog"

const (
	KeyDocumentType = "document_type"
	KeyArtifact     = "artifact"
	KeyFileID       = "file_id"
	KeyPath         = "path"
	KeyMethod       = "method"
	KeyStatus       = "status"
	KeyUserAgent    = "user_agent"
	KeyRemoteAddr   = "remote_addr"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DocumentType(t string) slog.Attr  { return slog.String(KeyDocumentType, t) }
func Artifact(name string) slog.Attr   { return slog.String(KeyArtifact, name) }
func FileID(id string) slog.Attr       { return slog.String(KeyFileID, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
