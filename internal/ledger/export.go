package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"eventdesk.io/eventdesk/internal/access"
	"eventdesk.io/eventdesk/internal/domain"
	apperrors "eventdesk.io/eventdesk/internal/pkg/errors"
	"eventdesk.io/eventdesk/internal/repository"
)

// ExportParams narrows the export result set.
type ExportParams struct {
	EventID string
	Status  domain.RegistrationStatus
}

// Export renders the filtered registrations as CSV. Columns are the fixed
// set plus the union of registrationData keys observed across the result,
// in first-seen order; registrations missing a key render blank. The output
// starts with a UTF-8 byte order mark for spreadsheet compatibility.
func (l *Ledger) Export(ctx context.Context, actor *access.Principal, p ExportParams) ([]byte, string, error) {
	if p.EventID != "" && !actor.CanAccessEvent(p.EventID) {
		return nil, "", apperrors.Forbidden(apperrors.CodeForbidden, "Access denied to this event")
	}
	regs, _, err := l.regs.List(ctx, repository.RegistrationFilter{
		EventID:   p.EventID,
		Status:    p.Status,
		Scope:     actor.EventScope(),
		SortBy:    "registeredAt",
		SortOrder: repository.SortDesc,
	})
	if err != nil {
		return nil, "", err
	}

	eventByID := make(map[string]*domain.Event)
	eventFor := func(id string) *domain.Event {
		if ev, ok := eventByID[id]; ok {
			return ev
		}
		ev, err := l.events.FindByID(ctx, id)
		if err != nil {
			ev = nil
		}
		eventByID[id] = ev
		return ev
	}

	var dynamic []string
	seen := make(map[string]bool)
	for _, reg := range regs {
		for _, key := range reg.Data.Keys() {
			if !seen[key] {
				seen[key] = true
				dynamic = append(dynamic, key)
			}
		}
	}

	headers := []string{
		"Confirmation #", "Email", "Status", "Event",
		"Event Date", "Category", "Registered At", "Waitlisted",
	}
	for _, key := range dynamic {
		headers = append(headers, formatFieldName(key))
	}
	headers = append(headers, "Waiver Acknowledged", "Signature Type", "Signed At", "IP Address")

	rows := make([][]string, 0, len(regs))
	for _, reg := range regs {
		ev := eventFor(reg.EventID)
		row := []string{
			reg.ConfirmationNumber,
			reg.Email,
			string(reg.Status),
			eventTitle(ev),
			eventDate(ev),
			eventCategory(ev),
			reg.RegisteredAt.Format("Jan 2, 2006 3:04 PM"),
			yesNo(reg.IsWaitlisted),
		}
		for _, key := range dynamic {
			value, _ := reg.Data.Get(key)
			row = append(row, formatCellValue(value))
		}
		row = append(row, waiverColumns(reg)...)
		rows = append(rows, row)
	}

	var b strings.Builder
	b.WriteString("\uFEFF")
	b.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}

	return []byte(b.String()), exportFilename(regs, eventByID), nil
}

func exportFilename(regs []*domain.Registration, events map[string]*domain.Event) string {
	name := "registrations"
	if len(regs) > 0 {
		if ev := events[regs[0].EventID]; ev != nil {
			name += "-" + sanitizeFilename(ev.Title)
		}
	}
	return name + "-" + time.Now().Format("2006-01-02") + ".csv"
}

func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 30 {
			break
		}
	}
	return b.String()
}

func eventTitle(ev *domain.Event) string {
	if ev == nil {
		return "N/A"
	}
	return ev.Title
}

func eventDate(ev *domain.Event) string {
	if ev == nil || ev.EventDate.IsZero() {
		return ""
	}
	return ev.EventDate.Format("Jan 2, 2006")
}

func eventCategory(ev *domain.Event) string {
	if ev == nil {
		return ""
	}
	return string(ev.Category)
}

func waiverColumns(reg *domain.Registration) []string {
	w := reg.Waiver
	if w == nil {
		return []string{"No", "", "", reg.Metadata.IPAddress}
	}
	cols := []string{yesNo(w.Acknowledged), "", "", reg.Metadata.IPAddress}
	if w.Signature != nil {
		cols[1] = w.Signature.Type
		if !w.Signature.SignedAt.IsZero() {
			cols[2] = w.Signature.SignedAt.Format("1/2/2006, 3:04:05 PM")
		}
		if w.Signature.IPAddress != "" {
			cols[3] = w.Signature.IPAddress
		}
	}
	return cols
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// formatFieldName spaces out camelCase and snake/kebab separators and
// capitalizes the first letter: "firstName" becomes "First Name".
func formatFieldName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:]
}

// formatCellValue flattens a submitted variant for one CSV cell. Drawn
// signatures are replaced with a placeholder instead of dumping base64.
func formatCellValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return yesNo(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatCellValue(item)
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(v, "; ")
	case map[string]any:
		if t, _ := v["type"].(string); t != "" {
			if val, _ := v["value"].(string); val != "" {
				if t == domain.SignatureDraw && strings.HasPrefix(val, "data:") {
					return "[Signature Image]"
				}
				if t == domain.SignatureType {
					return val
				}
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(v))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, v[k]))
		}
		return strings.Join(parts, "; ")
	}
	return fmt.Sprintf("%v", value)
}
