package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
)

// feed-mirror serves a local JSON snapshot of the deals feed so the
// sync pipeline can run without upstream credentials.
func main() {
	addr := flag.String("addr", ":9000", "listen address")
	dataPath := flag.String("data", "data/sample-feed.json", "feed snapshot to serve")
	flag.Parse()

	http.HandleFunc("/offers", func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile(*dataPath)
		if err != nil {
			http.Error(w, "cannot read feed snapshot: "+err.Error(), http.StatusInternalServerError)
			return
		}
		// validate JSON so a bad file doesn't silently break syncs
		var tmp any
		if err := json.Unmarshal(b, &tmp); err != nil {
			http.Error(w, "feed snapshot invalid JSON: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	})

	log.Printf("feed-mirror listening on %s, serving %s", *addr, *dataPath)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
