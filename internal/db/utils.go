package db

import (
	"fmt"
	"strconv"

	dbpkg "github.com/dtnitsch/sof-extractor/pkg/db"
	"github.com/urfave/cli/v2"
)

// ResolveDocumentID accepts either a numeric document ID or a content
// hash and returns the document ID.
func ResolveDocumentID(arg string, database *dbpkg.DB) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	return database.GetDocumentID(arg)
}

// GetSessionIDOrLatest returns the session ID from args, or the latest
// session if not provided.
func GetSessionIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		sessions, err := database.ListSessions(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest session: %w", err)
		}
		if len(sessions) == 0 {
			return 0, fmt.Errorf("no sessions found. Run 'sof-extractor process --files \"...\"' first")
		}
		return sessions[0].ID, nil
	}

	sessionID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session ID: %s", c.Args().First())
	}
	return sessionID, nil
}

// OpenDatabase honors the --db flag when present.
func OpenDatabase(c *cli.Context) (*dbpkg.DB, error) {
	if path := c.String("db"); path != "" {
		return dbpkg.OpenPath(path)
	}
	return dbpkg.Open()
}
