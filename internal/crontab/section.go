package crontab

import (
	"path/filepath"
	"strings"

	"gpwsched/internal/job"
)

// Marker lines bounding the managed section. Everything between them
// (markers included) is owned by the synchronizer.
const (
	MarkerStart = "# GPWSCHED_BEGIN"
	MarkerEnd   = "# GPWSCHED_END"
)

// renderSection produces the managed section text: the start marker, one
// comment plus scheduler line per job, and the end marker. Disabled jobs
// are the caller's concern; every config passed in gets a line.
func renderSection(configs []job.Config, runnerCmd, logDir string) string {
	lines := []string{MarkerStart}
	for _, cfg := range configs {
		comment := cfg.Description
		if comment == "" {
			comment = cfg.Name
		}
		logFile := filepath.Join(logDir, cfg.Name+".log")
		lines = append(lines,
			"# "+comment,
			cfg.Schedule.String()+" "+runnerCmd+" "+cfg.Name+" >> "+logFile+" 2>&1",
		)
	}
	lines = append(lines, MarkerEnd)
	return strings.Join(lines, "\n")
}

// excise returns content with the managed section removed, markers
// included. Lines outside the section pass through unmodified. When no
// markers are present the input is returned as is.
func excise(content string) []string {
	var kept []string
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		switch strings.TrimSpace(line) {
		case MarkerStart:
			inSection = true
			continue
		case MarkerEnd:
			inSection = false
			continue
		}
		if !inSection {
			kept = append(kept, line)
		}
	}
	return kept
}

// sectionLines returns the scheduler lines currently inside the managed
// section, comments and blanks excluded.
func sectionLines(content string) []string {
	var lines []string
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case MarkerStart:
			inSection = true
			continue
		case MarkerEnd:
			inSection = false
			continue
		}
		if inSection && trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// jobNameFromLine extracts the job name from an installed scheduler line.
// The line shape is "<5 cron fields> <runner command...> <job_name> >> <log> 2>&1",
// so the name is the token right before the ">>" redirection.
func jobNameFromLine(line string) string {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == ">>" && i > 0 {
			return fields[i-1]
		}
	}
	return ""
}
