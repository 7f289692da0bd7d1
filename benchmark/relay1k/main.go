package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/auth"
)

var maxGrowers int = 1000
var httpHostPort string = "127.0.0.1:1080"
var jwtSecret string = "dev-secret"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

func main() {
	if secret := os.Getenv("ECOGROW_JWT_SECRET"); secret != "" {
		jwtSecret = secret
	}

	growerIDs := make([]string, maxGrowers)
	tokens := make([]string, maxGrowers)
	for i := range maxGrowers {
		growerIDs[i] = uuid.NewString()
		token, err := auth.GenerateToken([]byte(jwtSecret), growerIDs[i], time.Hour)
		if err != nil {
			log.Fatal("Failed to mint token:", err)
		}
		tokens[i] = token
	}
	fmt.Printf("generated %v grower identities\n", maxGrowers)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := range maxGrowers {
		wg.Add(1)
		go func() {
			postReading(growerIDs[i], tokens[i])
			fmt.Printf("\rposted reading for grower %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rposted readings for %v growers: used time=%v seconds, throughput=%v action/second\n",
		maxGrowers, usedTime.Seconds(), float64(maxGrowers)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := range maxGrowers {
		wg.Add(1)
		go func() {
			doAction(tokens[i])
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v growers: used time=%v seconds, throughput=%v action/second\n",
		maxGrowers, usedTime.Seconds(), float64(maxGrowers*3)/usedTime.Seconds(),
	)
}

func flipCoin() bool {
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	val := min + rnd.Float64()*(max-min)
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func authedDo(method, url, token string, body []byte) (*http.Response, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, bytes.NewReader(body))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return http.DefaultClient.Do(req)
}

func postReading(growerID, token string) {
	co2 := rndFloat64(300, 1800, 1)
	temp := rndFloat64(5, 40, 1)
	hum := rndFloat64(30, 95, 1)

	var body []byte
	if flipCoin() {
		body, _ = json.Marshal(map[string]float64{
			"co2":      co2,
			"temp":     temp,
			"humidity": hum,
		})
	} else {
		// the text form the relay also accepts
		body = []byte(fmt.Sprintf("CO2: %.1f, T: %.1f, H: %.1f", co2, temp, hum))
	}

	resp, err := authedDo("POST", fmt.Sprintf("http://%s/api/sensors/ingest", httpHostPort), token, body)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusTooManyRequests {
		panic(fmt.Sprintf("unexpected ingest status for grower %s: %v", growerID, resp.StatusCode))
	}
}

func doAction(token string) {
	actions := []func(){
		genGetAlertsAction(token),
		genGetSummaryAction(token),
		genGetPredictAction(token),
	}
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
	})
	for _, action := range actions {
		action()
	}
}

func genGetAlertsAction(token string) func() {
	return func() {
		resp, err := authedDo("GET", fmt.Sprintf("http://%s/api/alerts?limit=10", httpHostPort), token, nil)
		if err != nil {
			panic(err)
		}
		defer resp.Body.Close()
	}
}

func genGetSummaryAction(token string) func() {
	return func() {
		resp, err := authedDo("GET", fmt.Sprintf("http://%s/api/sensors/summary", httpHostPort), token, nil)
		if err != nil {
			panic(err)
		}
		defer resp.Body.Close()
	}
}

func genGetPredictAction(token string) func() {
	return func() {
		crops := []string{"lettuce", "tomato", "cucumber", "strawberry", "spinach"}
		crop := crops[rnd.Intn(len(crops))]
		resp, err := authedDo("GET", fmt.Sprintf("http://%s/api/ai/predict?crop_type=%s", httpHostPort, crop), token, nil)
		if err != nil {
			panic(err)
		}
		defer resp.Body.Close()
	}
}
