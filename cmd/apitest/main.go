// Command apitest runs a smoke suite against a running Ekadashi API server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types (mirror the API envelope and payloads)
// =============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

type EventRecord struct {
	Date           string `json:"date"`
	Paksha         string `json:"paksha"`
	CheckType      string `json:"check_type"`
	TithiAtSunrise int    `json:"tithi_at_sunrise"`
	Sunrise        string `json:"sunrise"`
	ParanaStart    string `json:"parana_start"`
	ParanaEnd      string `json:"parana_end"`
	ParanaFallback bool   `json:"parana_fallback"`
}

type CalendarResponse struct {
	Location Location      `json:"location"`
	Count    int           `json:"count"`
	Events   []EventRecord `json:"events"`
}

type RangeResponse struct {
	From     string           `json:"from"`
	To       string           `json:"to"`
	Calendar CalendarResponse `json:"calendar"`
}

type DayResponse struct {
	Date           string `json:"date"`
	Classification struct {
		IsEkadashi bool   `json:"is_ekadashi"`
		Tithi      int    `json:"tithi"`
		Paksha     string `json:"paksha"`
		CheckType  string `json:"check_type"`
	} `json:"classification"`
	Checkpoints []struct {
		Name string `json:"name"`
	} `json:"checkpoints"`
}

type ParanaResponse struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Sunrise  time.Time `json:"sunrise"`
	Fallback bool      `json:"fallback"`
}

type TithiResponse struct {
	Span struct {
		Tithi struct {
			Index  int    `json:"index"`
			Paksha string `json:"paksha"`
		} `json:"tithi"`
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	} `json:"span"`
}

type CompareResponse struct {
	Year      int                `json:"year"`
	Calendars []CalendarResponse `json:"calendars"`
	Diff      *struct {
		Both  []string `json:"both"`
		OnlyA []string `json:"only_a"`
		OnlyB []string `json:"only_b"`
	} `json:"diff"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			// A cold year scan can take a few seconds
			Timeout: 60 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Ekadashi API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testYear()
	tr.testICS()
	tr.testRange()
	tr.testNext()
	tr.testDay()
	tr.testParana()
	tr.testTithi()
	tr.testCompare()
	tr.testEdgeCases()
	tr.testAdmin()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}

	httpResp, err := tr.getRaw("/metrics")
	if err != nil {
		tr.recordError("Metrics", err.Error())
		return
	}
	defer httpResp.Body.Close()
	body, _ := io.ReadAll(httpResp.Body)
	if httpResp.StatusCode == 200 && strings.Contains(string(body), "ekadashi_api_http_requests_total") {
		tr.recordSuccess("Metrics endpoint exposes request counters")
	} else {
		tr.recordError("Metrics", fmt.Sprintf("HTTP %d without request counters", httpResp.StatusCode))
	}
}

func (tr *TestRunner) testYear() {
	tr.printSection("Year Calendars")

	testCases := []struct {
		location    string
		year        int
		minCount    int
		maxCount    int
		description string
	}{
		{"kyiv", 2026, 24, 24, "Kyiv 2026"},
		{"wurzburg", 2026, 24, 24, "Würzburg 2026"},
		{"kyiv", 2027, 24, 26, "Kyiv 2027"},
	}

	for _, tc := range testCases {
		path := fmt.Sprintf("/api/v1/ekadashi/%d?location=%s", tc.year, tc.location)
		resp, err := tr.get(path)
		if err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}

		var cal CalendarResponse
		if err := tr.parseDataAs(resp, &cal); err != nil {
			tr.recordError(tc.description, err.Error())
			continue
		}

		if cal.Count < tc.minCount || cal.Count > tc.maxCount {
			tr.recordError(tc.description, fmt.Sprintf("Expected %d-%d events, got %d",
				tc.minCount, tc.maxCount, cal.Count))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %d events", tc.description, cal.Count))

		if tr.verbose {
			tr.printEvents(cal.Events)
		}
	}

	// Jul 11 2026 is a Mahadvadashi in Kyiv
	resp, err := tr.get("/api/v1/ekadashi/2026?location=kyiv")
	if err != nil {
		tr.recordError("Mahadvadashi", err.Error())
		return
	}
	var cal CalendarResponse
	if err := tr.parseDataAs(resp, &cal); err != nil {
		tr.recordError("Mahadvadashi", err.Error())
		return
	}
	for _, ev := range cal.Events {
		if ev.Date == "2026-07-11" {
			if ev.CheckType == "mahadvadashi" {
				tr.recordSuccess("2026-07-11 classified as Mahadvadashi in Kyiv")
			} else {
				tr.recordError("Mahadvadashi", fmt.Sprintf("2026-07-11 has check type %s", ev.CheckType))
			}
			return
		}
	}
	tr.recordError("Mahadvadashi", "2026-07-11 missing from Kyiv 2026")
}

func (tr *TestRunner) testICS() {
	tr.printSection("iCalendar Export")

	for _, path := range []string{
		"/api/v1/ekadashi/2026.ics?location=wurzburg",
		"/api/v1/ekadashi/2026?location=wurzburg&format=ics",
	} {
		resp, err := tr.getRaw(path)
		if err != nil {
			tr.recordError("ICS", err.Error())
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode != 200:
			tr.recordError(path, fmt.Sprintf("HTTP %d", resp.StatusCode))
		case !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"):
			tr.recordError(path, fmt.Sprintf("Unexpected content type %s", resp.Header.Get("Content-Type")))
		case strings.Count(string(body), "BEGIN:VEVENT") != 24:
			tr.recordError(path, fmt.Sprintf("Expected 24 events, got %d", strings.Count(string(body), "BEGIN:VEVENT")))
		default:
			tr.recordSuccess(fmt.Sprintf("%s: 24 VEVENTs", path))
		}
	}
}

func (tr *TestRunner) testRange() {
	tr.printSection("Date Range Tests")

	resp, err := tr.get("/api/v1/ekadashi?from=2026-03-01&to=2026-03-31&location=kyiv")
	if err != nil {
		tr.recordError("Range (March)", err.Error())
		return
	}

	var rangeData RangeResponse
	if err := tr.parseDataAs(resp, &rangeData); err != nil {
		tr.recordError("Range (March)", err.Error())
		return
	}

	if rangeData.Calendar.Count == 2 {
		tr.recordSuccess(fmt.Sprintf("March range returned %d events", rangeData.Calendar.Count))
	} else {
		tr.recordError("Range (March)", fmt.Sprintf("Expected 2 events, got %d", rangeData.Calendar.Count))
	}
	if tr.verbose {
		tr.printEvents(rangeData.Calendar.Events)
	}

	tr.expectStatus("Range limit enforced", "/api/v1/ekadashi?from=2026-01-01&to=2027-12-31", 400)
	tr.expectStatus("Invalid range rejected (to before from)", "/api/v1/ekadashi?from=2026-12-31&to=2026-01-01", 400)
	tr.expectStatus("Missing to parameter rejected", "/api/v1/ekadashi?from=2026-01-01", 400)
}

func (tr *TestRunner) testNext() {
	tr.printSection("Next Ekadashi")

	resp, err := tr.get("/api/v1/ekadashi/next?from=2026-07-01&location=kyiv")
	if err != nil {
		tr.recordError("Next", err.Error())
		return
	}

	var ev EventRecord
	if err := tr.parseDataAs(resp, &ev); err != nil {
		tr.recordError("Next", err.Error())
		return
	}

	if ev.Date == "2026-07-11" {
		tr.recordSuccess(fmt.Sprintf("Next after 2026-07-01: %s (%s)", ev.Date, ev.CheckType))
	} else {
		tr.recordError("Next", fmt.Sprintf("Expected 2026-07-11, got %s", ev.Date))
	}

	if _, err := tr.get("/api/v1/ekadashi/next"); err != nil {
		tr.recordError("Next (today)", err.Error())
	} else {
		tr.recordSuccess("Next from today at the default location")
	}
}

func (tr *TestRunner) testDay() {
	tr.printSection("Day Inspection")

	testCases := []struct {
		date        string
		isEkadashi  bool
		checkType   string
		description string
	}{
		{"2026-07-11", true, "mahadvadashi", "Mahadvadashi"},
		{"2026-07-10", false, "", "Dashami before Mahadvadashi"},
		{"2026-01-14", true, "brahma_muhurta", "Krishna Ekadashi"},
	}

	for _, tc := range testCases {
		resp, err := tr.get(fmt.Sprintf("/api/v1/day/%s?location=kyiv", tc.date))
		if err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		var day DayResponse
		if err := tr.parseDataAs(resp, &day); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		c := day.Classification
		if c.IsEkadashi == tc.isEkadashi && c.CheckType == tc.checkType {
			tr.recordSuccess(fmt.Sprintf("%s: tithi %d %s (%s)", tc.date, c.Tithi, c.Paksha, tc.description))
		} else {
			tr.recordError(tc.date, fmt.Sprintf("Expected ekadashi=%t check=%q, got ekadashi=%t check=%q",
				tc.isEkadashi, tc.checkType, c.IsEkadashi, c.CheckType))
		}

		if tr.verbose {
			for _, cp := range day.Checkpoints {
				fmt.Printf("    checkpoint: %s\n", cp.Name)
			}
		}
	}

	tr.expectStatus("Polar night rejected", "/api/v1/day/2026-12-21?lat=69.65&lon=18.96&tz=Europe/Oslo", 422)
}

func (tr *TestRunner) testParana() {
	tr.printSection("Parana Windows")

	resp, err := tr.get("/api/v1/parana/2026-01-14?location=kyiv")
	if err != nil {
		tr.recordError("Parana", err.Error())
		return
	}

	var w ParanaResponse
	if err := tr.parseDataAs(resp, &w); err != nil {
		tr.recordError("Parana", err.Error())
		return
	}

	if !w.End.After(w.Start) || w.Start.Before(w.Sunrise) {
		tr.recordError("Parana", fmt.Sprintf("Malformed window %s - %s (sunrise %s)", w.Start, w.End, w.Sunrise))
	} else {
		tr.recordSuccess(fmt.Sprintf("Parana after 2026-01-14: %s - %s",
			w.Start.Format("15:04"), w.End.Format("15:04")))
	}

	tr.expectStatus("Non-Ekadashi without paksha rejected", "/api/v1/parana/2026-07-10?location=kyiv", 422)
	tr.expectStatus("Invalid paksha rejected", "/api/v1/parana/2026-01-14?paksha=full", 400)
}

func (tr *TestRunner) testTithi() {
	tr.printSection("Tithi Lookup")

	resp, err := tr.get("/api/v1/tithi?at=2026-03-15T12:00:00Z")
	if err != nil {
		tr.recordError("Tithi", err.Error())
		return
	}

	var t TithiResponse
	if err := tr.parseDataAs(resp, &t); err != nil {
		tr.recordError("Tithi", err.Error())
		return
	}

	if t.Span.Tithi.Index == 27 && t.Span.Tithi.Paksha == "krishna" {
		tr.recordSuccess(fmt.Sprintf("Tithi 27 (krishna) from %s to %s",
			t.Span.Start.Format(time.RFC3339), t.Span.End.Format(time.RFC3339)))
	} else {
		tr.recordError("Tithi", fmt.Sprintf("Expected 27 krishna, got %d %s", t.Span.Tithi.Index, t.Span.Tithi.Paksha))
	}

	tr.expectStatus("Invalid instant rejected", "/api/v1/tithi?at=yesterday", 400)
}

func (tr *TestRunner) testCompare() {
	tr.printSection("Location Comparison")

	resp, err := tr.get("/api/v1/compare/2026?location=kyiv&location=wurzburg")
	if err != nil {
		tr.recordError("Compare", err.Error())
		return
	}

	var cmp CompareResponse
	if err := tr.parseDataAs(resp, &cmp); err != nil {
		tr.recordError("Compare", err.Error())
		return
	}

	if cmp.Diff == nil {
		tr.recordError("Compare", "Missing diff for two locations")
		return
	}
	if len(cmp.Diff.OnlyA) == 3 && len(cmp.Diff.OnlyB) == 3 {
		tr.recordSuccess(fmt.Sprintf("Kyiv vs Würzburg: %d shared, only kyiv %v, only wurzburg %v",
			len(cmp.Diff.Both), cmp.Diff.OnlyA, cmp.Diff.OnlyB))
	} else {
		tr.recordError("Compare", fmt.Sprintf("Expected 3/3 differing dates, got %d/%d",
			len(cmp.Diff.OnlyA), len(cmp.Diff.OnlyB)))
	}

	tr.expectStatus("Single location rejected", "/api/v1/compare/2026?location=kyiv", 400)
	tr.expectStatus("Unknown location rejected", "/api/v1/compare/2026?location=kyiv&location=atlantis", 400)
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	tr.expectStatus("Invalid date format rejected", "/api/v1/day/invalid", 400)
	tr.expectStatus("Impossible date rejected", "/api/v1/day/2026-02-30", 400)
	tr.expectStatus("Year out of range rejected", "/api/v1/ekadashi/1200", 400)
	tr.expectStatus("Latitude out of range rejected", "/api/v1/ekadashi/2026?lat=95&lon=0", 400)
	tr.expectStatus("Unknown timezone rejected", "/api/v1/ekadashi/2026?lat=50&lon=30&tz=Mars/Olympus", 400)
	tr.expectStatus("Unknown route returns 404", "/api/v1/readings/today", 404)

	if _, err := tr.get("/api/v1/day/2028-02-29?location=kyiv"); err != nil {
		tr.recordError("Leap year", err.Error())
	} else {
		tr.recordSuccess("Leap year date (2028-02-29) handled")
	}
}

func (tr *TestRunner) testAdmin() {
	tr.printSection("Admin")

	req, _ := http.NewRequest("GET", tr.baseURL+"/api/v1/admin/locations", nil)
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	resp, err := tr.client.Do(req)
	if err != nil {
		tr.recordError("Admin locations", err.Error())
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 200:
		tr.recordSuccess("Admin location list returned")
	case resp.StatusCode == 401 && tr.apiKey == "":
		tr.recordSuccess("Admin location list requires an API key (pass -key to test it)")
	default:
		tr.recordError("Admin locations", fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	resp, err := tr.getRaw(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	url := tr.baseURL + path
	return tr.client.Get(url)
}

func (tr *TestRunner) expectStatus(msg, path string, want int) {
	resp, err := tr.getRaw(path)
	if err != nil {
		tr.recordError(msg, err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode == want {
		tr.recordSuccess(msg)
	} else {
		tr.recordError(msg, fmt.Sprintf("Expected HTTP %d, got %d", want, resp.StatusCode))
	}
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printEvents(events []EventRecord) {
	for _, ev := range events {
		fallback := ""
		if ev.ParanaFallback {
			fallback = " (fallback)"
		}
		fmt.Printf("    %s %-7s %-14s parana %s - %s%s\n",
			ev.Date, ev.Paksha, ev.CheckType, ev.ParanaStart, ev.ParanaEnd, fallback)
	}
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for admin endpoints")
	verbose := flag.Bool("v", false, "Verbose output (show event details)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
