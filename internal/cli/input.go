// Package cli handles interactive stdin prompting for debugging and manual
// testing of the AMP prefix index outside the msgpack IPC server.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ncloudioj/ampidx/internal/logger"
	"github.com/ncloudioj/ampidx/internal/utils"
	"github.com/ncloudioj/ampidx/pkg/ampidx"
)

// InputHandler reads prefixes from stdin and prints the single matching AMP
// suggestion (if any) from a built index.
type InputHandler struct {
	index            *ampidx.Index
	minPrefixLength  int
	maxPrefixLength  int
	warnOnRepetitive bool
	requestCount     int
	log              *log.Logger
}

// NewInputHandler initializes the InputHandler with basic parameters.
func NewInputHandler(index *ampidx.Index, minLength, maxLength int, warnOnRepetitive bool) *InputHandler {
	return &InputHandler{
		index:            index,
		minPrefixLength:  minLength,
		maxPrefixLength:  maxLength,
		warnOnRepetitive: warnOnRepetitive,
		log:              logger.Default("cli"),
	}
}

// Start begins the interface loop. It continuously prompts for input, reads
// a line from stdin, and passes the trimmed input to handleInput for
// processing. The loop terminates if an error occurs while reading stdin.
func (h *InputHandler) Start() error {
	h.log.Print("ampidx CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	h.log.Print("type a prefix and press Enter to query the index (Ctrl+C to exit):")

	for {
		h.log.Print("> ")
		prefix, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		h.handleInput(prefix)
	}
}

// handleInput validates and queries a single prefix, logging the result.
func (h *InputHandler) handleInput(prefix string) {
	h.requestCount++

	if len(prefix) < h.minPrefixLength {
		h.log.Errorf("prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		h.log.Errorf("prefix too long: %s", prefix)
		return
	}
	if h.warnOnRepetitive && utils.IsRepetitive(prefix) {
		h.log.Warnf("prefix '%s' looks repetitive, results may be unhelpful", prefix)
	}

	start := time.Now()
	results, err := h.index.Query(prefix)
	elapsed := time.Since(start)
	if err != nil {
		h.log.Errorf("query failed for '%s': %v", prefix, err)
		return
	}

	h.log.Debugf("took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(results) == 0 {
		h.log.Warnf("no match found for prefix: '%s'", prefix)
		return
	}

	r := results[0]
	title := fmt.Sprintf("\033[38;5;75m%s\033[0m", r.Title)
	h.log.Printf("%s -> %s  [%s, block %d]", title, r.URL, r.Advertiser, r.BlockID)
	if r.FullKeyword != "" {
		h.log.Printf("  full keyword: %s", r.FullKeyword)
	}
}
