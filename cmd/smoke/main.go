// Command smoke uploads a document to a running server and checks the shape
// of the response.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

func main() {
	baseURL := os.Getenv("SCRIVENER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if len(os.Args) != 2 {
		fmt.Println("usage: smoke <document>")
		os.Exit(2)
	}

	fmt.Println("Starting smoke test...")

	fmt.Println("1. Checking health...")
	resp, err := http.Get(baseURL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		fmt.Printf("FAILED: health check: %v\n", err)
		os.Exit(1)
	}
	resp.Body.Close()
	fmt.Println("PASSED: health check")

	fmt.Println("2. Uploading document...")
	body, err := upload(baseURL+"/parse-upload", os.Args[1])
	if err != nil {
		fmt.Printf("FAILED: upload: %v\n", err)
		os.Exit(1)
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("FAILED: response is not JSON: %v\n", err)
		os.Exit(1)
	}
	if _, ok := result["extractedText"]; ok {
		fmt.Println("PASSED: upload (no text detected)")
		return
	}
	for _, key := range []string{"finalSchema", "parseResult", "personAnnotations"} {
		if _, ok := result[key]; !ok {
			fmt.Printf("FAILED: response missing %q\n", key)
			os.Exit(1)
		}
	}
	fmt.Println("PASSED: upload")
	fmt.Println(string(body))
}

func upload(url, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Post(url, w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
