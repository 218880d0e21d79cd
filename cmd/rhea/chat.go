package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/rhea/pkg/rhea"
	"github.com/cognicore/rhea/pkg/rhea/locale"
)

const banner = `
╔═══════════════════════════════════════════════════════════════════════════════╗
║                                                                               ║
║    🏥 RHEA - Reliable Health Education Assistant                              ║
║                                                                               ║
║    🌐 Real-time data from WHO & MOHFW                                         ║
║    🧠 Intelligent symptom recognition                                         ║
║    🗣️  Hindi & English support                                                ║
║    ⚡ Emergency situation detection                                           ║
║                                                                               ║
╚═══════════════════════════════════════════════════════════════════════════════╝
`

var quickStart = []string{
	"💡 Quick Start Guide:",
	"   • Describe symptoms: 'I have fever and cough'",
	"   • Ask about diseases: 'Tell me about diabetes'",
	"   • Emergency help: 'chest pain emergency'",
	"   • Switch language: Type 'hindi' or 'english'",
	"   • Get help: Type 'help'",
	"   • Exit: Type 'quit' or 'exit'",
}

// tipEvery is how many answered messages pass between tips.
const tipEvery = 5

func newChatCmd(root *rootOptions, in io.Reader, out io.Writer) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive console session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := loadConfig(root)
			if err != nil {
				return err
			}
			defer logger.Sync()

			bot, cleanup, err := buildBot(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer cleanup()
			sess := bot.NewSession()

			// One-shot query mode
			if query != "" {
				if _, err := loadHealthData(ctx, bot, cfg, logger); err != nil {
					return err
				}
				fmt.Fprintln(out, sess.Process(ctx, query))
				return nil
			}

			fmt.Fprint(out, banner)
			fmt.Fprintln(out, sess.Text(locale.KeyFetchingData))
			report, err := loadHealthData(ctx, bot, cfg, logger)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, sess.DataLoadedMessage(report))
			fmt.Fprintln(out, "✅ RHEA is ready to assist you!")

			c := &console{bot: bot, sess: sess, out: out, logger: logger}
			return c.run(ctx, in)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "answer one message and exit")
	return cmd
}

// console is the interactive read-answer loop.
type console struct {
	bot    *rhea.Bot
	sess   *rhea.Session
	out    io.Writer
	logger *zap.Logger
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(c.out, "\n"+rule)
	for _, line := range quickStart {
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out, rule)

	lines, scanErr := readLines(ctx, in)
	turns := 0
	for {
		fmt.Fprintf(c.out, "\n[%s] 👤 You: ", c.sess.Text(locale.KeyPromptLabel))

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out, "\n\n"+c.sess.Text(locale.KeyInterrupted))
			return nil
		case l, ok := <-lines:
			if !ok {
				c.farewell(ctx)
				return <-scanErr
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if c.bot.IsExit(line) {
			c.farewell(ctx)
			return nil
		}

		turns++
		fmt.Fprint(c.out, "\n🤖 RHEA: ")
		fmt.Fprintln(c.out, c.sess.Process(ctx, line))

		if turns%tipEvery == 0 {
			fmt.Fprintln(c.out, "\n"+c.sess.Text(locale.KeyTip))
		}
	}
}

// farewell prints the localized goodbye with store statistics.
func (c *console) farewell(ctx context.Context) {
	stats, err := c.bot.Stats(ctx)
	if err != nil {
		c.logger.Warn("farewell statistics unavailable", zap.Error(err))
	}

	languages := make([]string, 0, len(stats.LanguageQueries))
	for l := range stats.LanguageQueries {
		languages = append(languages, string(l))
	}
	slices.Sort(languages)

	fmt.Fprintln(c.out, "\n"+c.sess.Format(locale.KeyFarewell, map[string]string{
		"total_queries":  fmt.Sprint(stats.TotalQueries),
		"total_articles": fmt.Sprint(stats.TotalArticles),
		"languages":      strings.Join(languages, ", "),
	}))
}

// readLines feeds scanned lines into a channel so the loop can also wait
// on ctx. The error channel receives the scanner error once lines closes.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}
