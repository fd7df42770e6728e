// Command client is a terminal demo for the ridelink coordination service.
// It keeps one auto-reconnecting connection open, prints every broadcast,
// and drives the local participation state machine from a small command
// loop:
//
//	loc <lat> <lng>          share the local position
//	create <start> <dest> <time> <max> [desc]
//	join <recruitId>
//	leave
//	status
//	quit
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jmkim-dev/ridelink/internal/client"
)

// app ties the connection controller to the local participation state.
type app struct {
	controller    *client.Controller
	participation *client.Participation

	// Set after sending a create; the next newRecruit broadcast is taken as
	// ours and promotes the local user to owner.
	pendingCreate atomic.Bool
}

func main() {
	endpoint := flag.String("endpoint", "ws://localhost:8080/ws", "WebSocket endpoint of the coordination server")
	userID := flag.String("user", "", "identity to declare in the handshake (server generates one when empty)")
	stateFile := flag.String("state", ".ridelink-state.json", "file backing the participation state")
	flag.Parse()

	store, err := client.NewFileStore(*stateFile)
	if err != nil {
		log.Fatalf("Failed to open state file: %v", err)
	}
	participation := client.NewParticipation(store)

	url := *endpoint
	if *userID != "" {
		url += "?userId=" + *userID
	}

	a := &app{
		controller:    client.NewController(),
		participation: participation,
	}
	defer a.controller.Disconnect()

	if err := a.controller.Connect(url, a.handleEvent); err != nil {
		log.Printf("Initial connect failed, retrying in background: %v", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !a.handleCommand(scanner.Text()) {
			return
		}
	}
}

// handleCommand executes one input line and reports whether the loop should
// continue.
func (a *app) handleCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "loc":
		if len(fields) != 3 {
			fmt.Println("usage: loc <lat> <lng>")
			return true
		}
		lat, errLat := strconv.ParseFloat(fields[1], 64)
		lng, errLng := strconv.ParseFloat(fields[2], 64)
		if errLat != nil || errLng != nil {
			fmt.Println("usage: loc <lat> <lng>")
			return true
		}
		a.controller.Send(client.NewLocationMessage(lat, lng))

	case "create":
		if len(fields) < 5 {
			fmt.Println("usage: create <start> <dest> <time> <max> [desc]")
			return true
		}
		max, err := strconv.Atoi(fields[4])
		if err != nil {
			fmt.Println("usage: create <start> <dest> <time> <max> [desc]")
			return true
		}
		a.pendingCreate.Store(true)
		a.controller.Send(client.NewCreateRecruitMessage(client.RecruitPayload{
			Start: fields[1],
			Dest:  fields[2],
			Time:  fields[3],
			Desc:  strings.Join(fields[5:], " "),
			Max:   max,
		}))

	case "join":
		if len(fields) != 2 {
			fmt.Println("usage: join <recruitId>")
			return true
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("usage: join <recruitId>")
			return true
		}
		a.controller.Send(client.NewJoinRecruitMessage(id))
		if err := a.participation.SetJoined(id); err != nil {
			log.Printf("Failed to persist participation state: %v", err)
		}

	case "leave":
		if err := a.participation.Clear(); err != nil {
			log.Printf("Failed to clear participation state: %v", err)
		}

	case "status":
		status, recruitID := a.participation.Current()
		if status == client.StatusIdle {
			fmt.Println("IDLE")
		} else {
			fmt.Printf("%s (recruit %d)\n", status, recruitID)
		}

	case "quit", "exit":
		return false

	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
	return true
}

// handleEvent renders one server broadcast and advances the participation
// state when a pending create comes back.
func (a *app) handleEvent(data []byte) {
	event, err := client.DecodeServerEvent(data)
	if err != nil {
		log.Printf("Ignoring server frame: %v", err)
		return
	}

	switch event.Kind {
	case client.EventUpdateUsers:
		fmt.Printf("[presence] %d located users\n", len(event.Users))
		for _, user := range event.Users {
			fmt.Printf("  %s %s at (%.5f, %.5f)\n", user.Color, user.ID, user.Lat, user.Lng)
		}
	case client.EventNewRecruit:
		r := event.Recruit
		fmt.Printf("[new] #%d %s -> %s at %s (%d/%d) %s\n", r.ID, r.Start, r.Dest, r.Time, r.Cur, r.Max, r.Desc)
		if a.pendingCreate.CompareAndSwap(true, false) {
			if err := a.participation.SetOwner(r.ID); err != nil {
				log.Printf("Failed to persist participation state: %v", err)
			}
		}
	case client.EventUpdateRecruit:
		r := event.Recruit
		fmt.Printf("[update] #%d now %d/%d\n", r.ID, r.Cur, r.Max)
	}
}
