// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"openclaw/internal/brain"
)

func runBatchMode(logger zerolog.Logger) {
	if err := runBatch(logger); err != nil {
		logger.Error().Err(err).Msg("Batch mode failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBatch(logger zerolog.Logger) error {
	logger.Debug().Msg("Running in batch mode")

	a, err := newApp(*configPath, logger)
	if err != nil {
		return err
	}
	defer a.close()

	// Read input from stdin
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		input := scanner.Text()
		logger.Info().Str("user_input", input).Msg("User input received")

		start := time.Now()
		answer := a.brain.ProcessQuery(context.Background(), input, brain.Options{
			ThreadID: a.threadID,
			History:  a.history(),
		})
		logger.Info().
			Str("model_response", answer).
			Dur("duration_ms", time.Since(start)).
			Msg("Answer received")

		// Output response
		fmt.Println(answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}
