package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexisbeaulieu97/hardhatdesk/internal/logger"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/procexec"
	"github.com/alexisbeaulieu97/hardhatdesk/internal/toolchain"
	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

// ScriptFile is the driver script written into the project for each evaluation.
// Concurrent evaluations in the same project share this name.
const ScriptFile = ".hardhatdesk-console.js"

// ResultMarker precedes the serialized result in the script's stdout so that
// compiler chatter printed by the run task can be skipped.
const ResultMarker = "__HARDHATDESK_RESULT__"

const expressionPlaceholder = "/*__EXPRESSION__*/"

// Serializer is the JavaScript used to render evaluation results.
const Serializer = `function serializeResult(value) {
  if (value === undefined) {
    return "undefined";
  }
  try {
    return JSON.stringify(value, function (key, v) {
      const raw = this[key];
      if (typeof raw === "bigint") {
        return raw.toString() + "n";
      }
      if (raw && typeof raw === "object") {
        if (raw._isBigNumber === true) {
          return raw.toString() + " (BigNumber)";
        }
        if (typeof raw.address === "string") {
          return { type: "Signer", address: raw.address };
        }
      }
      return v;
    }, 2);
  } catch (err) {
    return String(value);
  }
}
`

const scriptTemplate = `const hre = require("hardhat");
const { ethers } = hre;

` + Serializer + `
async function main() {
  const result = await (async () => {
    return (
` + expressionPlaceholder + `
    );
  })();
  console.log("` + ResultMarker + `");
  console.log(serializeResult(result));
}

main()
  .then(() => process.exit(0))
  .catch((error) => {
    console.error(error);
    process.exit(1);
  });
`

// RenderScript embeds expression verbatim into the driver script. Trailing
// whitespace and statement terminators are dropped since the expression
// becomes the operand of a return.
func RenderScript(expression string) string {
	expression = strings.TrimRight(expression, " \t\r\n;")
	return strings.Replace(scriptTemplate, expressionPlaceholder, expression, 1)
}

// Console evaluates expressions inside the toolchain runtime.
type Console struct {
	Runner    procexec.Runner
	Toolchain toolchain.Toolchain
	Logger    *logger.Logger
}

// Evaluate writes the driver script, runs it against the configured network and
// returns the serialized result. The script is removed on every path; a failed
// removal is logged and never replaces the evaluation's own result or error.
func (c *Console) Evaluate(ctx context.Context, dir, expression string) (string, error) {
	if err := requireDir(dir); err != nil {
		return "", err
	}
	if strings.TrimSpace(expression) == "" {
		return "", hderrors.NewPreconditionError("expression", "expression is empty")
	}

	path := filepath.Join(dir, ScriptFile)
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.Logger.Warn("could not remove console script", "path", path, "error", err.Error())
		}
	}()

	if err := os.WriteFile(path, []byte(RenderScript(expression)), 0o644); err != nil {
		return "", fmt.Errorf("write console script: %w", err)
	}

	cmd := c.Toolchain.Run(dir, ScriptFile)
	cmd.Label = "console"
	out, err := c.Runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !out.Success {
		return "", hderrors.NewCommandError(cmd.String(), out.ExitCode, out.Stdout, out.Stderr)
	}
	return ExtractResult(out.Stdout), nil
}

// ExtractResult returns the text after the last ResultMarker, or all of stdout
// when the marker is missing.
func ExtractResult(stdout string) string {
	idx := strings.LastIndex(stdout, ResultMarker)
	if idx < 0 {
		return strings.TrimSpace(stdout)
	}
	return strings.TrimSpace(stdout[idx+len(ResultMarker):])
}
