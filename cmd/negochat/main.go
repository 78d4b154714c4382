// negochat is a CLI tool for talking to the negotiation service.
// Each command performs a single operation, making it composable for
// scripts; chat without -m drops into an interactive loop.
//
// Commands:
//
//	negochat chat -server URL -user EMAIL -product ID [-m MESSAGE]
//	negochat products -server URL [-id N]
//	negochat search -server URL -query TEXT [-k N]
//	negochat policy -server URL [-patch JSON]
//	negochat session -server URL -user EMAIL -product ID [-history]
//	negochat transcript -server URL -user EMAIL [-product N] [-limit N]
//
// Examples:
//
//	negochat products -server http://localhost:8080
//	negochat chat -server http://localhost:8080 -user asha@example.com -product 1 -m "20000"
//	negochat chat -server http://localhost:8080 -user asha@example.com -product 1
//	negochat policy -server http://localhost:8080 -patch '{"high_stock_discount_pct":0.2}'
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	serverURL string
	quiet     bool
	noColor   bool
	verbose   bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "chat":
		runChat(args)
	case "products":
		runProducts(args)
	case "search":
		runSearch(args)
	case "policy":
		runPolicy(args)
	case "session":
		runSession(args)
	case "transcript":
		runTranscript(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `negochat - price negotiation chat client

Usage:
  negochat <command> [options]

Commands:
  chat        Send one message (or haggle interactively without -m)
  products    List the catalog, or show one product with -id
  search      Rank products against a free-text query
  policy      Show the negotiation policy, or patch it with -patch
  session     Show the negotiation session for a user and product
  transcript  Show recent conversation turns for a user

Examples:
  # Browse, then haggle
  negochat products -server http://localhost:8080
  negochat chat -server http://localhost:8080 -user asha@example.com -product 1 -m "20000"

  # Interactive session
  negochat chat -server http://localhost:8080 -user asha@example.com -product 1

  # Tighten the high-stock discount
  negochat policy -server http://localhost:8080 -patch '{"high_stock_discount_pct":0.12}'

Run 'negochat <command> -h' for command-specific options.
`)
}

// newFlagSet creates a FlagSet pre-wired with the shared flags.
func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&serverURL, "server", "http://localhost:8080", "negotiation service base URL")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func runChat(args []string) {
	fs := newFlagSet("chat", "negochat chat -user EMAIL [-product ID] [-m MESSAGE] [options]")
	var user, message string
	var productID int64
	fs.StringVar(&user, "user", "", "Shopper email (required)")
	fs.Int64Var(&productID, "product", 0, "Product ID under negotiation")
	fs.StringVar(&message, "m", "", "Message to send (omit for interactive mode)")
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if user == "" {
		fs.Usage()
		os.Exit(1)
	}

	if message != "" {
		sendTurn(user, productID, message)
		return
	}

	// Interactive loop: one turn per line until EOF or "quit".
	fmt.Printf("%sChatting as %s (product %d). Type 'quit' to leave.%s\n", colorGray, user, productID, colorReset)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%syou>%s ", colorBold, colorReset)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		sendTurn(user, productID, line)
	}
}

// sendTurn posts one chat turn and prints the bot's side of it.
func sendTurn(user string, productID int64, message string) {
	reqBody := map[string]interface{}{
		"user_id": user,
		"message": message,
	}
	if productID != 0 {
		reqBody["product_id"] = productID
	}

	resp, err := doRequest("POST", "/chat", reqBody)
	if err != nil {
		fatal("Chat turn failed: %v", err)
	}

	reply, _ := resp["reply"].(string)
	if quiet {
		fmt.Println(reply)
		return
	}

	fmt.Printf("%s%s%s\n", colorCyan, reply, colorReset)
	if decision, ok := resp["decision"].(map[string]interface{}); ok {
		outcome, _ := decision["outcome"].(string)
		reason, _ := decision["reasoning"].(string)
		switch outcome {
		case "accepted":
			printSuccess("accepted (%s)", reason)
		case "rejected":
			printWarning("rejected")
		default:
			printInfo("countered (%s)", reason)
		}
	}
}

// =============================================================================
// PRODUCTS COMMAND
// =============================================================================

func runProducts(args []string) {
	fs := newFlagSet("products", "negochat products [-id N] [options]")
	var id int64
	fs.Int64Var(&id, "id", 0, "Show a single product")
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	if id != 0 {
		resp, err := doRequest("GET", fmt.Sprintf("/products/%d", id), nil)
		if err != nil {
			fatal("Failed to get product: %v", err)
		}
		printProduct(resp)
		return
	}

	resp, err := doRequest("GET", "/products", nil)
	if err != nil {
		fatal("Failed to list products: %v", err)
	}
	products, _ := resp["products"].([]interface{})
	for _, p := range products {
		if pm, ok := p.(map[string]interface{}); ok {
			printProduct(pm)
		}
	}
}

func printProduct(p map[string]interface{}) {
	id, _ := p["id"].(float64)
	name, _ := p["name"].(string)
	stock, _ := p["stock"].(float64)
	price, _ := p["price"].(float64)
	if quiet {
		fmt.Printf("%d\t%s\n", int64(id), name)
		return
	}
	fmt.Printf("%s#%d%s %s%s%s  %s  %sstock %d%s\n",
		colorGray, int64(id), colorReset,
		colorBold, name, colorReset,
		formatPaise(price),
		colorGray, int64(stock), colorReset)
}

// =============================================================================
// SEARCH COMMAND
// =============================================================================

func runSearch(args []string) {
	fs := newFlagSet("search", "negochat search -query TEXT [-k N] [options]")
	var query string
	var k int
	fs.StringVar(&query, "query", "", "Free-text product query (required)")
	fs.IntVar(&k, "k", 3, "Number of results")
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("POST", "/products/search", map[string]interface{}{
		"query": query,
		"k":     k,
	})
	if err != nil {
		fatal("Search failed: %v", err)
	}

	results, _ := resp["results"].([]interface{})
	if len(results) == 0 {
		printWarning("No results")
		return
	}
	for _, r := range results {
		rm, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		score, _ := rm["score"].(float64)
		if product, ok := rm["product"].(map[string]interface{}); ok {
			fmt.Printf("%s%.3f%s ", colorGray, score, colorReset)
			printProduct(product)
		}
	}
}

// =============================================================================
// POLICY COMMAND
// =============================================================================

func runPolicy(args []string) {
	fs := newFlagSet("policy", "negochat policy [-patch JSON] [options]")
	var patch string
	fs.StringVar(&patch, "patch", "", "Partial policy update as JSON")
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	var resp map[string]interface{}
	var err error
	if patch != "" {
		var body map[string]interface{}
		if err := json.Unmarshal([]byte(patch), &body); err != nil {
			fatal("Invalid -patch JSON: %v", err)
		}
		resp, err = doRequest("PATCH", "/admin/policy", body)
		if err != nil {
			fatal("Policy update failed: %v", err)
		}
		printSuccess("Policy updated")
	} else {
		resp, err = doRequest("GET", "/admin/policy", nil)
		if err != nil {
			fatal("Failed to get policy: %v", err)
		}
	}

	pretty, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(pretty))
}

// =============================================================================
// SESSION AND TRANSCRIPT COMMANDS
// =============================================================================

func runSession(args []string) {
	fs := newFlagSet("session", "negochat session -user EMAIL -product ID [-history] [options]")
	var user string
	var productID int64
	var history bool
	fs.StringVar(&user, "user", "", "Shopper email (required)")
	fs.Int64Var(&productID, "product", 0, "Product ID (required)")
	fs.BoolVar(&history, "history", false, "Include retired sessions")
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if user == "" || productID == 0 {
		fs.Usage()
		os.Exit(1)
	}

	path := fmt.Sprintf("/sessions/%s/%d", url.PathEscape(user), productID)
	if history {
		path += "?history=true"
	}
	resp, err := doRequest("GET", path, nil)
	if err != nil {
		fatal("Failed to get session: %v", err)
	}

	pretty, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(pretty))
}

func runTranscript(args []string) {
	fs := newFlagSet("transcript", "negochat transcript -user EMAIL [-product N] [-limit N] [options]")
	var user string
	var productID int64
	var limit int
	fs.StringVar(&user, "user", "", "Shopper email (required)")
	fs.Int64Var(&productID, "product", 0, "Filter by product ID")
	fs.IntVar(&limit, "limit", 20, "Maximum turns to fetch")
	fs.Parse(args)

	if noColor {
		disableColors()
	}
	if user == "" {
		fs.Usage()
		os.Exit(1)
	}

	path := fmt.Sprintf("/transcripts/%s?limit=%d", url.PathEscape(user), limit)
	if productID != 0 {
		path += fmt.Sprintf("&product_id=%d", productID)
	}
	resp, err := doRequest("GET", path, nil)
	if err != nil {
		fatal("Failed to get transcript: %v", err)
	}

	turns, _ := resp["turns"].([]interface{})
	for _, turn := range turns {
		tm, ok := turn.(map[string]interface{})
		if !ok {
			continue
		}
		intent, _ := tm["intent"].(string)
		utterance, _ := tm["utterance"].(string)
		reply, _ := tm["reply"].(string)
		fmt.Printf("%s[%s]%s %syou:%s %s\n", colorGray, intent, colorReset, colorBold, colorReset, utterance)
		fmt.Printf("          %s%s%s\n", colorCyan, reply, colorReset)
	}
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	reqURL := serverURL + path
	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if verbose {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if verbose {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}
	fmt.Println(pretty.String())
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

// formatPaise renders a paise amount from a decoded JSON number.
func formatPaise(v float64) string {
	return fmt.Sprintf("₹%.2f", v/100)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
