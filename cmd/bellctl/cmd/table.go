package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vcns/bell-timer/internal/client"
	domain "github.com/vcns/bell-timer/internal/domain/alarm"
	"github.com/vcns/bell-timer/internal/sounds"
)

// renderTable prints a rounded table with left-aligned headers.
func renderTable(headers table.Row, rows []table.Row, rightAligned ...int) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(headers)
	tw.AppendRows(rows)

	columnConfigs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, column := range rightAligned {
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}

	tw.SetColumnConfigs(columnConfigs)

	fmt.Println(tw.Render())
}

// renderAlarms prints the alarm list as a table.
func renderAlarms(alarms []domain.Alarm) {
	rows := make([]table.Row, 0, len(alarms))
	for _, a := range alarms {
		rows = append(rows, table.Row{a.ID, a.Day, a.Time, a.Label, a.Sound})
	}

	renderTable(table.Row{"ID", "DAY", "TIME", "LABEL", "SOUND"}, rows)
}

// renderSounds prints the sound library as a table.
func renderSounds(list []sounds.Sound) {
	rows := make([]table.Row, 0, len(list))
	for _, s := range list {
		rows = append(rows, table.Row{s.Name, strconv.FormatInt(s.Size, 10)})
	}

	renderTable(table.Row{"NAME", "SIZE (BYTES)"}, rows, 2)
}

// renderStatus prints the server status report as a key/value table.
func renderStatus(status client.Status) {
	rows := []table.Row{
		{"status", status.Status},
		{"version", status.Version},
		{"pid", strconv.Itoa(status.PID)},
		{"uptime", (time.Duration(status.UptimeSeconds) * time.Second).String()},
		{"alarms", strconv.Itoa(status.AlarmCount)},
		{"audio available", strconv.FormatBool(status.AudioAvailable)},
		{"playback errors", strconv.FormatInt(status.PlaybackErrors, 10)},
		{"heartbeat age", fmt.Sprintf("%.1fs", status.HeartbeatAgeSeconds)},
	}

	renderTable(table.Row{"FIELD", "VALUE"}, rows)
}
