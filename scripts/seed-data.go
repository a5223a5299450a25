//go:build ignore
// +build ignore

// Seeds a local backend with a few months of demo transactions and runs a
// detection pass, so the dashboard has something to show.
//
//	go run scripts/seed-data.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spendlens/backend/internal/model"
)

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8111"
	}
	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "local-dev-user"
	}

	log.Printf("🌱 Seeding data for user: %s", userID)
	log.Printf("📡 API URL: %s", apiURL)

	txs := demoTransactions(time.Now())
	if err := call(apiURL, userID, http.MethodPut, "/v1/transactions", txs); err != nil {
		log.Fatalf("Failed to seed transactions: %v", err)
	}
	log.Printf("✅ Seeded %d transactions", len(txs))

	if err := call(apiURL, userID, http.MethodPost, "/v1/detection/run", nil); err != nil {
		log.Fatalf("Failed to run detection: %v", err)
	}
	log.Println("✅ Detection pass complete")
}

func call(apiURL, userID, method, path string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, apiURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, payload)
	}
	return nil
}

// demoTransactions builds six months of history: two clean subscriptions,
// a gym membership that raised its price, and scattered one-off spending.
func demoTransactions(now time.Time) []model.Transaction {
	var txs []model.Transaction
	id := 0
	add := func(monthsAgo, day int, merchant, category string, amount float64) {
		id++
		date := time.Date(now.Year(), now.Month(), day, 12, 0, 0, 0, time.UTC).AddDate(0, -monthsAgo, 0)
		txs = append(txs, model.Transaction{
			ID:         fmt.Sprintf("seed-%03d", id),
			Date:       date,
			Merchant:   merchant,
			CategoryID: category,
			Amount:     amount,
		})
	}

	for m := 6; m >= 1; m-- {
		add(m, 5, "NETFLIX.COM 866-579-7172", "entertainment", 15.49)
		add(m, 12, "Spotify USA", "entertainment", 11.99)

		// Gym raised its price three months ago.
		gym := 39.99
		if m <= 3 {
			gym = 44.99
		}
		add(m, 1, "POS IRON WORKS GYM 0012345678", "health", gym)

		add(m, 8, "WM SUPERCENTER #2417", "groceries", 85+float64(m)*3)
		add(m, 17, "SQ *BLUE BOTTLE COFFEE", "dining", 6.75)
		add(m, 22, "CORNER BISTRO", "dining", 42.10)
	}
	return txs
}
