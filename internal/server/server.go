package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/pkg/document"
	"github.com/quillworks/quill/pkg/draft"
	"github.com/quillworks/quill/pkg/pdf"
	"github.com/quillworks/quill/pkg/public"
	"github.com/quillworks/quill/pkg/session"
	"github.com/quillworks/quill/pkg/share"
	"github.com/quillworks/quill/pkg/version"
)

// Server contains the server configuration and wired services.
type Server struct {
	// Config is the config for the server.
	Config *config.Config

	// DB is the database for the server.
	DB *gorm.DB

	// Logger is the logger for the server.
	Logger hclog.Logger

	// Documents is the document graph service.
	Documents *document.Service

	// Sessions is the draft session manager.
	Sessions *session.Service

	// Versions is the version history service.
	Versions *version.Service

	// Shares is the share link service.
	Shares *share.Service

	// Public is the anonymous share read service.
	Public *public.Service

	// Drafts is the AI draft generation service. Nil when no AI provider
	// is configured.
	Drafts *draft.Service

	// Renderer is the PDF rendering collaborator. Nil when no provider
	// is configured.
	Renderer pdf.Renderer
}
