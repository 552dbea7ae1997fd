package providers

import (
	"github.com/smallbiznis/rentaldesk/internal/providers/email"
	"github.com/smallbiznis/rentaldesk/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
