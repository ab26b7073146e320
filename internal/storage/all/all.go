// Package all registers every storage backend with the factory. Commands
// blank-import it so the configured driver is always available without the
// CLI layer importing driver packages directly.
package all

import (
	_ "smartsales/internal/storage/mysql"
	_ "smartsales/internal/storage/postgres"
	_ "smartsales/internal/storage/sqlite"
)
