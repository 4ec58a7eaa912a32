package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the weather client API")
	city := flag.String("city", "London", "City to search for")
	flag.Parse()

	fmt.Println("Weather API Client Example")
	fmt.Println("=========================")

	client := &http.Client{Timeout: 30 * time.Second}

	// Search for a city
	fmt.Printf("\nSearching for %s...\n", *city)
	body, _ := json.Marshal(map[string]string{"city": *city})
	if err := call(client, http.MethodPost, *baseURL+"/api/search", body); err != nil {
		fmt.Printf("Error searching: %v\n", err)
		os.Exit(1)
	}

	// Switch to Fahrenheit; the server re-renders without a new lookup
	fmt.Println("\nSwitching to Fahrenheit...")
	body, _ = json.Marshal(map[string]string{"unit": "fahrenheit"})
	if err := call(client, http.MethodPut, *baseURL+"/api/unit", body); err != nil {
		fmt.Printf("Error switching unit: %v\n", err)
		os.Exit(1)
	}

	// Report a denied browser geolocation prompt
	fmt.Println("\nReporting denied location access...")
	body, _ = json.Marshal(map[string]string{"error": "permission_denied"})
	if err := call(client, http.MethodPost, *baseURL+"/api/locate", body); err != nil {
		fmt.Printf("Error locating: %v\n", err)
		os.Exit(1)
	}
}

// call sends body and pretty prints the JSON reply, whatever its status.
func call(client *http.Client, method, url string, body []byte) error {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unexpected response (%s): %s", resp.Status, raw)
	}

	prettyJSON, _ := json.MarshalIndent(data, "", "  ")
	fmt.Printf("%s\n%s\n", resp.Status, prettyJSON)
	return nil
}
