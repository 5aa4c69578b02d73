package main

import (
	"flag"
	"net/http"
	"os"

	"translate-gateway/logger"
	"translate-gateway/teste-validacao/deeplfake"
)

// Sobe o DeepL falso. Para apontar o gateway para ele:
//
//	DEEPL_API_KEY=qualquer DEEPL_API_URL=http://localhost:8081/v2/translate go run ./cmd/gateway
func main() {
	addr := flag.String("addr", ":8081", "listen address")
	fail := flag.Int("fail", 0, "answer every call with this HTTP status")
	flag.Parse()

	log := logger.New(logger.WithFormat(logger.FormatText))
	fake := &deeplfake.Server{FailStatus: *fail, Logger: log}

	log.Info("fake deepl listening", "addr", *addr, "fail_status", *fail)
	if err := http.ListenAndServe(*addr, fake.Handler()); err != nil {
		log.Error("fake deepl stopped", "error", err)
		os.Exit(1)
	}
}
