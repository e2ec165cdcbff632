package migrations

import (
	"io/fs"

	access "github.com/goliatone/go-access"
)

func init() {
	sub, err := fs.Sub(access.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(sub)
}
