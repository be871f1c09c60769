// Command scanner is a terminal gate client: it reads raw QR payloads from
// stdin (a handheld scanner in keyboard-wedge mode emits one line per read)
// and runs them through the debounce + validate pipeline.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/minq3010/ticket-checkin/internal/scanner"
)

func main() {
	baseURL := flag.String("server", "http://localhost:8083", "check-in service base URL")
	token := flag.String("token", "", "bearer token for the check-in service")
	manual := flag.Bool("manual", false, "require pressing enter to re-arm after each result")
	timeout := flag.Duration("timeout", 10*time.Second, "per-scan validation timeout")
	flag.Parse()

	policy := scanner.RearmAuto
	if *manual {
		policy = scanner.RearmManual
	}

	client := scanner.NewClient(*baseURL, *token)
	feedback := &terminalFeedback{}
	deb := scanner.NewDebouncer(client, feedback,
		scanner.WithPolicy(policy),
		scanner.WithValidateTimeout(*timeout),
	)

	mode := "auto re-arm"
	if *manual {
		mode = "manual re-arm (press enter between scans)"
	}
	log.Printf("scanning against %s, %s", *baseURL, mode)

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := in.Text()
		if line == "" {
			if *manual {
				deb.Rearm()
			}
			continue
		}
		if !deb.OnScan(line) {
			// Gate busy: dropped, same as a repeated camera frame.
			continue
		}
	}
	if err := in.Err(); err != nil {
		log.Fatalf("stdin: %v", err)
	}
}

type terminalFeedback struct{}

func (f *terminalFeedback) ScanAccepted(raw string) {
	fmt.Printf("scan: %s\n", raw)
}

func (f *terminalFeedback) ScanSettled(res scanner.Result) {
	if res.OK() {
		// Bell stands in for the vibration cue on a phone.
		fmt.Printf("\a✅ ticket %d admitted", res.Ticket.ID)
		if res.Ticket.EventName != "" {
			fmt.Printf(" (%s)", res.Ticket.EventName)
		}
		fmt.Println()
		return
	}

	switch res.Err.Kind {
	case scanner.KindMalformedPayload:
		fmt.Printf("\a❌ unreadable code: %q\n", res.Raw)
	case scanner.KindAlreadyEntered:
		fmt.Println("\a❌ already entered — do not admit")
	case scanner.KindNotFound:
		fmt.Println("\a❌ no such ticket for that owner")
	case scanner.KindTransport:
		fmt.Printf("\a⚠ network trouble: %v\n", res.Err)
	default:
		fmt.Printf("\a❌ validation failed: %v\n", res.Err)
	}
}
