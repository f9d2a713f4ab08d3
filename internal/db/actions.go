package db

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/artifact_manager"
	dbpkg "github.com/dtnitsch/sof-extractor/pkg/db"
	"github.com/urfave/cli/v2"
)

// SessionsAction lists sessions in a table format.
func SessionsAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	sessions, err := database.ListSessions(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-8s %-8s %-12s %-20s\n",
		"ID", "Created", "Docs", "Success", "Failed", "Mode", "Port TZ")
	fmt.Println(strings.Repeat("-", 90))

	for _, s := range sessions {
		fmt.Printf("%-6d %-20s %-8d %-8d %-8d %-12s %-20s\n",
			s.ID,
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.FileCount,
			s.SuccessCount,
			s.FailedCount,
			s.Mode,
			s.PortTimezone,
		)
	}

	fmt.Printf("\nTotal: %d sessions\n", len(sessions))
	fmt.Printf("\nTip: Use 'sof-extractor sessions show <id>' to see details\n")

	return nil
}

// SessionAction shows details for a specific session.
func SessionAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	sessionID, err := GetSessionIDOrLatest(c, database)
	if err != nil {
		return err
	}

	session, err := database.GetSessionByID(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	docs, err := database.GetSessionDocuments(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session documents: %w", err)
	}

	fmt.Printf("Session %d\n", session.ID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:       %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Documents:     %d total (%d success, %d failed)\n",
		session.FileCount, session.SuccessCount, session.FailedCount)
	fmt.Printf("Mode:          %s\n", session.Mode)
	if session.PortTimezone != "" {
		fmt.Printf("Port Timezone: %s\n", session.PortTimezone)
	}

	if len(docs) > 0 {
		fmt.Printf("\nDocuments (%d):\n", len(docs))
		fmt.Println(strings.Repeat("-", 60))
		for i, d := range docs {
			fmt.Printf("%2d. [%s] %s\n", i+1, d.Status, d.Source)
			if d.Status == dbpkg.StatusFailed {
				fmt.Printf("    Error: [%s] %s\n", d.ErrorType, d.ErrorMessage)
			} else {
				fmt.Printf("    Events: %d | Anomalies: %d | Low confidence: %d\n",
					d.EventCount, d.AnomalyCount, d.LowConfidenceCount)
			}
		}
	}

	fmt.Printf("\nTip: Use 'sof-extractor db show <document_id>' to see extracted events\n")

	return nil
}

// EventsAction queries stored events across documents.
func EventsAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	filter := dbpkg.EventFilter{
		NameLike:      c.String("name"),
		MaxConfidence: c.Float64("max-confidence"),
		UnparsedOnly:  c.Bool("unparsed"),
		Limit:         c.Int("limit"),
	}

	records, err := database.QueryEvents(filter)
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No events found matching filters")
		return nil
	}

	fmt.Printf("%-6s %-24s %-22s %-22s %-6s %-10s\n",
		"Doc", "File", "Event", "Start (UTC)", "Row", "Confidence")
	fmt.Println(strings.Repeat("-", 96))

	for _, r := range records {
		start := r.Event.StartTimeISO
		if r.Event.Unparsed {
			start = "(unparsed)"
		}
		fmt.Printf("%-6d %-24s %-22s %-22s %-6d %-10.2f\n",
			r.DocumentID,
			truncate(r.Filename, 24),
			truncate(r.Event.EventName, 22),
			start,
			r.Event.RowIndex,
			r.Event.Confidence,
		)
	}

	fmt.Printf("\nFound: %d events\n", len(records))

	return nil
}

// ShowAction prints the stored processing result for a document, looked
// up by document ID or content hash.
func ShowAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("document ID or content hash required\nUsage: sof-extractor db show <document_id_or_hash>")
	}

	database, err := OpenDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	docID, err := ResolveDocumentID(c.Args().First(), database)
	if err != nil {
		return err
	}

	events, err := database.GetDocumentEvents(docID)
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}
	anomalies, err := database.GetDocumentAnomalies(docID)
	if err != nil {
		return fmt.Errorf("failed to get anomalies: %w", err)
	}

	out := struct {
		Events    []models.NormalizedEvent `json:"events"`
		Anomalies []models.Anomaly         `json:"anomalies"`
	}{Events: events, Anomalies: anomalies}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// PagesAction prints the stored page text for a document, looked up by
// document ID or content hash.
func PagesAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("document ID or content hash required\nUsage: sof-extractor db pages <document_id_or_hash>")
	}

	database, err := OpenDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	docID, err := ResolveDocumentID(c.Args().First(), database)
	if err != nil {
		return err
	}

	manager, err := artifact_manager.NewManager(c.String("output-dir"), 0)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact manager: %w", err)
	}

	pages, found, err := manager.GetPages(docID)
	if err != nil {
		return fmt.Errorf("failed to read pages artifact: %w", err)
	}
	if !found {
		return fmt.Errorf("no stored page text for document %d\n\nThe document may not have been processed yet. Try:\n  sof-extractor process --files \"...\"", docID)
	}

	for _, p := range pages {
		fmt.Printf("--- page %d (%s, confidence %.2f) ---\n", p.Page, p.Method, p.Confidence)
		fmt.Println(p.Text)
	}
	return nil
}

// InitAction initializes the database schema explicitly.
func InitAction(c *cli.Context) error {
	database, err := OpenDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", database.Path())
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
