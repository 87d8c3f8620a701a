package mcp

import (
	"github.com/custodia-labs/restgate/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes as tools.
type Ports struct {
	// Services manages services. Required.
	Services driving.ServiceAdmin

	// AuthApps manages auth apps. Optional.
	AuthApps driving.AuthAppAdmin

	// ContentSets manages content sets. Optional.
	ContentSets driving.ContentSetAdmin

	// Vendors reads the auth vendors. Optional.
	Vendors driving.VendorCatalog
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Services == nil {
		return ErrMissingServiceAdmin
	}
	return nil
}
