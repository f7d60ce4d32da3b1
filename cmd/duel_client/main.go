package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalDuration   int64
	Rounds          int64
}

type Config struct {
	BaseURL        string
	Workers        int
	Duration       int
	Pairs          int
	RoundCount     int
	RequestsPerSec int
}

// pair - двое друзей с общей дуэлью. Ход бросающего вызов меняется после каждого раунда
type pair struct {
	mu     sync.Mutex
	duelID string
	source string
	target string
}

var (
	stats  Stats
	client = &http.Client{Timeout: 10 * time.Second}
)

func main() {
	config := parseFlags()
	if err := validateConfig(config); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	log.Printf("Starting duel client with config: %+v", config)

	pairs, err := setupPairs(config)
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	log.Printf("Prepared %d duels", len(pairs))

	done := make(chan bool)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	roundsPerWorker := ratePerWorker(config)

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go worker(i, config, pairs, roundsPerWorker, done, &wg)
	}

	go printStats()

	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	if config.Duration > 0 {
		go func() {
			time.Sleep(time.Duration(config.Duration) * time.Second)
			stop()
		}()
	}

	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		stop()
	}()

	wg.Wait()
	printFinalStats()
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.BaseURL, "url", "http://localhost:8080/api/v1", "Word duel API URL")
	flag.IntVar(&config.Workers, "workers", 10, "Number of concurrent workers")
	flag.IntVar(&config.Duration, "duration", 60, "Test duration in seconds (0 for infinite)")
	flag.IntVar(&config.Pairs, "pairs", 20, "Number of friend pairs to create")
	flag.IntVar(&config.RoundCount, "rounds", 0, "Total rounds to play (0 for infinite)")
	flag.IntVar(&config.RequestsPerSec, "rps", 20, "Rounds per second target")

	flag.Parse()
	return config
}

func validateConfig(config Config) error {
	if strings.TrimSpace(config.BaseURL) == "" {
		return fmt.Errorf("-url is required")
	}
	if config.Workers <= 0 {
		return fmt.Errorf("-workers must be positive, got %d", config.Workers)
	}
	if config.RequestsPerSec <= 0 {
		return fmt.Errorf("-rps must be positive, got %d", config.RequestsPerSec)
	}
	if config.Pairs <= 0 {
		return fmt.Errorf("-pairs must be positive, got %d", config.Pairs)
	}
	if config.Duration < 0 {
		return fmt.Errorf("-duration must not be negative, got %d", config.Duration)
	}
	if config.RoundCount < 0 {
		return fmt.Errorf("-rounds must not be negative, got %d", config.RoundCount)
	}
	return nil
}

// ratePerWorker делит rps между воркерами, каждому не меньше раунда в секунду
func ratePerWorker(config Config) int {
	rate := config.RequestsPerSec / config.Workers
	if rate < 1 {
		return 1
	}
	return rate
}

// setupPairs регистрирует игроков, дружит их попарно и достаёт id дуэлей
func setupPairs(config Config) ([]*pair, error) {
	pairs := make([]*pair, 0, config.Pairs)
	for i := 0; i < config.Pairs; i++ {
		source, err := signUp(config.BaseURL)
		if err != nil {
			return nil, err
		}
		target, err := signUp(config.BaseURL)
		if err != nil {
			return nil, err
		}
		body := map[string]string{"sourceUserId": source, "targetUserId": target}
		if err := call(http.MethodPost, config.BaseURL+"/user/addfriend", body, nil, http.StatusOK); err != nil {
			return nil, err
		}
		if err := call(http.MethodPost, config.BaseURL+"/user/confirmfriend", body, nil, http.StatusOK); err != nil {
			return nil, err
		}

		var eligibility struct {
			DuelID string `json:"duelId"`
		}
		url := fmt.Sprintf("%s/user/%s/eligible/%s", config.BaseURL, source, target)
		if err := call(http.MethodGet, url, nil, &eligibility, http.StatusOK); err != nil {
			return nil, err
		}
		if eligibility.DuelID == "" {
			return nil, fmt.Errorf("no duel for %s and %s", source, target)
		}
		pairs = append(pairs, &pair{duelID: eligibility.DuelID, source: source, target: target})
	}
	return pairs, nil
}

func signUp(baseURL string) (string, error) {
	var resp struct {
		UserID string `json:"user_id"`
	}
	body := map[string]string{
		"email":    gofakeit.Email(),
		"name":     gofakeit.Name(),
		"password": gofakeit.Password(true, true, true, false, false, 12),
	}
	if err := call(http.MethodPost, baseURL+"/user/signup", body, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func worker(id int, config Config, pairs []*pair, roundsPerSec int, done chan bool, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(roundsPerSec))
	defer ticker.Stop()

	played := 0

	for {
		select {
		case <-done:
			log.Printf("Worker %d stopping, played %d rounds", id, played)
			return
		case <-ticker.C:
			if config.RoundCount > 0 && int(atomic.LoadInt64(&stats.Rounds)) >= config.RoundCount {
				return
			}
			p := pairs[rand.Intn(len(pairs))]
			if playRound(config.BaseURL, p) {
				played++
				atomic.AddInt64(&stats.Rounds, 1)
			}
		}
	}
}

// playRound - challenge, attempt и случайный исход. Пара блокируется на весь раунд
func playRound(baseURL string, p *pair) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	duelURL := fmt.Sprintf("%s/challenge/duel/%s", baseURL, p.duelID)
	challenge := map[string]any{
		"question": map[string]any{
			"type":    "JUMBLE",
			"content": map[string]string{"word": randomWord()},
		},
	}
	steps := []struct {
		url  string
		body any
	}{
		{fmt.Sprintf("%s/user/%s", duelURL, p.source), challenge},
		{duelURL + "/attempt", nil},
		{duelURL + "/" + outcome(), nil},
	}
	for _, step := range steps {
		if err := measure(func() error {
			return call(http.MethodPost, step.url, step.body, nil, http.StatusNoContent)
		}); err != nil {
			log.Printf("Duel %s: %v", p.duelID, err)
			return false
		}
	}
	p.source, p.target = p.target, p.source
	return true
}

func outcome() string {
	if rand.Intn(2) == 0 {
		return "success"
	}
	return "failure"
}

// randomWord - слово из заглавных латинских букв длиной 4..20
func randomWord() string {
	for {
		word := strings.ToUpper(gofakeit.Word())
		if len(word) >= 4 && len(word) <= 20 && strings.Trim(word, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") == "" {
			return word
		}
	}
}

func measure(fn func() error) error {
	start := time.Now()
	err := fn()
	atomic.AddInt64(&stats.TotalRequests, 1)
	atomic.AddInt64(&stats.TotalDuration, time.Since(start).Milliseconds())
	if err != nil {
		atomic.AddInt64(&stats.FailedRequests, 1)
	} else {
		atomic.AddInt64(&stats.SuccessRequests, 1)
	}
	return err
}

func call(method, url string, body any, out any, expected int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, url, string(data))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func printStats() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		total := atomic.LoadInt64(&stats.TotalRequests)
		success := atomic.LoadInt64(&stats.SuccessRequests)
		failed := atomic.LoadInt64(&stats.FailedRequests)
		rounds := atomic.LoadInt64(&stats.Rounds)
		totalDuration := atomic.LoadInt64(&stats.TotalDuration)

		var avgLatency int64
		if total > 0 {
			avgLatency = totalDuration / total
		}

		var successRate float64
		if total > 0 {
			successRate = float64(success) / float64(total) * 100
		}

		log.Printf("[STATS] Rounds: %d | Requests: %d | Success: %d | Failed: %d | Success Rate: %.2f%% | Avg Latency: %dms",
			rounds, total, success, failed, successRate, avgLatency)
	}
}

func printFinalStats() {
	total := atomic.LoadInt64(&stats.TotalRequests)
	success := atomic.LoadInt64(&stats.SuccessRequests)
	failed := atomic.LoadInt64(&stats.FailedRequests)
	rounds := atomic.LoadInt64(&stats.Rounds)
	totalDuration := atomic.LoadInt64(&stats.TotalDuration)

	var avgLatency int64
	if total > 0 {
		avgLatency = totalDuration / total
	}

	var successRate float64
	if total > 0 {
		successRate = float64(success) / float64(total) * 100
	}

	log.Println("\n========== FINAL STATISTICS ==========")
	log.Printf("Rounds played:      %d", rounds)
	log.Printf("Total Requests:     %d", total)
	log.Printf("Successful:         %d", success)
	log.Printf("Failed:             %d", failed)
	log.Printf("Success Rate:       %.2f%%", successRate)
	log.Printf("Average Latency:    %dms", avgLatency)
	log.Println("======================================")
}
