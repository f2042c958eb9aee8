package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Offline helper: summarizes one day's app log for the ops runbook.
// Usage: go run scripts/analyze_logs.go [YYYY-MM-DD]

type LogStats struct {
	TotalErrors      int
	LoginSuccess     int
	LoginFailures    int
	SalesSubmitted   int
	SalesAutoApprove int
	LeadsRecalled    int
	SettlementRuns   int
	TierMissing      int
	PayslipsSent     int
	ProfileActivity  map[string]int
	ErrorPatterns    map[string]int
}

func main() {
	day := time.Now().Format("2006-01-02")
	if len(os.Args) > 1 {
		day = os.Args[1]
	}

	stats := &LogStats{
		ProfileActivity: make(map[string]int),
		ErrorPatterns:   make(map[string]int),
	}

	analyzeLog(filepath.Join("./logs", fmt.Sprintf("app-%s.log", day)), stats)
	printReport(day, stats)
}

func analyzeLog(logFile string, stats *LogStats) {
	file, err := os.Open(logFile)
	if err != nil {
		fmt.Printf("Error opening log file %s: %v\n", logFile, err)
		return
	}
	defer file.Close()

	profileRegex := regexp.MustCompile(`profile[ =](\d+)`)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "level=error") {
			stats.TotalErrors++
			extractErrorPattern(line, stats)
		}

		if strings.Contains(line, "logged in") {
			stats.LoginSuccess++
		}
		if strings.Contains(line, "Login failed") {
			stats.LoginFailures++
		}
		if strings.Contains(line, "Sale submitted") {
			stats.SalesSubmitted++
		}
		if strings.Contains(line, "auto-approved") {
			stats.SalesAutoApprove++
		}
		if strings.Contains(line, "lead recalled") || strings.Contains(line, "Lead recalled") {
			stats.LeadsRecalled++
		}
		if strings.Contains(line, "Settlement run") || strings.Contains(line, "settlement run") {
			stats.SettlementRuns++
		}
		if strings.Contains(line, "Commission tier missing") {
			stats.TierMissing++
		}
		if strings.Contains(line, "Payslip") && strings.Contains(line, "delivered") {
			stats.PayslipsSent++
		}

		if match := profileRegex.FindStringSubmatch(line); match != nil {
			stats.ProfileActivity[match[1]]++
		}
	}
}

func extractErrorPattern(line string, stats *LogStats) {
	// The message follows the msg= field in the logrus text format.
	idx := strings.Index(line, "msg=")
	if idx < 0 {
		return
	}
	msg := strings.Trim(strings.TrimSpace(line[idx+4:]), `"`)
	// Collapse record IDs so the same failure groups together.
	msg = regexp.MustCompile(`\d+`).ReplaceAllString(msg, "N")
	stats.ErrorPatterns[msg]++
}

func printReport(day string, stats *LogStats) {
	fmt.Println("\n=== Log Analysis Report ===")
	fmt.Println("Day:", day)
	fmt.Println("Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Println("\n1. Authentication:")
	fmt.Printf("   Successful Logins: %d\n", stats.LoginSuccess)
	fmt.Printf("   Failed Logins: %d\n", stats.LoginFailures)

	fmt.Println("\n2. Business Activity:")
	fmt.Printf("   Sales Submitted: %d\n", stats.SalesSubmitted)
	fmt.Printf("   Sales Auto-Approved: %d\n", stats.SalesAutoApprove)
	fmt.Printf("   Leads Recalled: %d\n", stats.LeadsRecalled)
	fmt.Printf("   Settlement Runs: %d\n", stats.SettlementRuns)
	fmt.Printf("   Payslips Delivered: %d\n", stats.PayslipsSent)
	fmt.Printf("   Missing Commission Tiers: %d\n", stats.TierMissing)

	fmt.Println("\n3. Errors:")
	fmt.Printf("   Total Errors: %d\n", stats.TotalErrors)

	fmt.Println("\n4. Most Active Profiles:")
	printTop(stats.ProfileActivity, 5, "profile %s: %d log lines\n")

	fmt.Println("\n5. Most Common Errors:")
	printTop(stats.ErrorPatterns, 5, "%s: %d occurrences\n")
}

func printTop(counts map[string]int, limit int, format string) {
	type entry struct {
		key   string
		count int
	}

	var entries []entry
	for key, count := range counts {
		entries = append(entries, entry{key, count})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Printf("   "+format, e.key, e.count)
	}
}
