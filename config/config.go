// Package config parses the host agent's launch arguments
// ("<plugin-path> <rt-read-fd> <rt-write-fd>"; there is no
// main-channel-handle argument, since MainContext runs over the
// process's stdin/stdout) and validates an optional JSON limits/scheduling
// override file, using the same gojsonschema validator the teacher uses
// for its manifest/argument validation (schema_validation.go).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pluginbridge/bridge/wire"
)

// HostAgentArgs is the parsed positional command line of the host agent
// process, as the shim's launcher invokes it. MainContext is carried on
// the process's inherited stdin/stdout (spec.md §4.5 step 1 "two
// datagram pairs"; launcher.ExecLauncher wires these from cmd.Stdin/
// cmd.Stdout); RealtimeContext is carried on two inherited file
// descriptors named positionally, since ExecLauncher passes them as
// ExtraFiles rather than stdio.
type HostAgentArgs struct {
	PluginPath string
	RTReadFD   int
	RTWriteFD  int
}

// ParseHostAgentArgs parses os.Args[1:] (plugin-path,
// rt-channel-read-handle, rt-channel-write-handle) into HostAgentArgs.
func ParseHostAgentArgs(args []string) (HostAgentArgs, error) {
	if len(args) != 3 {
		return HostAgentArgs{}, fmt.Errorf("config: expected 3 arguments (plugin-path rt-read-fd rt-write-fd), got %d", len(args))
	}
	rtRead, err := strconv.Atoi(args[1])
	if err != nil {
		return HostAgentArgs{}, fmt.Errorf("config: rt-channel-read-handle: %w", err)
	}
	rtWrite, err := strconv.Atoi(args[2])
	if err != nil {
		return HostAgentArgs{}, fmt.Errorf("config: rt-channel-write-handle: %w", err)
	}
	return HostAgentArgs{PluginPath: args[0], RTReadFD: rtRead, RTWriteFD: rtWrite}, nil
}

// overrideSchema bounds the optional JSON override file to sane values so
// a malformed config file fails fast at startup rather than producing a
// silently-wrong negotiated Limits (spec.md §5 "no external
// cancellation" makes a bad limit value otherwise hard to recover from
// mid-session).
const overrideSchema = `{
  "type": "object",
  "properties": {
    "max_frame": {"type": "integer", "minimum": 1024},
    "max_chunk": {"type": "integer", "minimum": 256},
    "sched_policy": {"type": "string"},
    "sched_priority": {"type": "integer", "minimum": 0, "maximum": 99}
  },
  "additionalProperties": false
}`

// Override holds optional operator overrides to the negotiated defaults.
type Override struct {
	MaxFrame      int    `json:"max_frame"`
	MaxChunk      int    `json:"max_chunk"`
	SchedPolicy   string `json:"sched_policy"`
	SchedPriority int32  `json:"sched_priority"`
}

// LoadOverride reads and schema-validates an optional override file. A
// missing path returns the zero Override and no error — overrides are
// optional.
func LoadOverride(path string) (Override, error) {
	if path == "" {
		return Override{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Override{}, fmt.Errorf("config: read override: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(overrideSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return Override{}, fmt.Errorf("config: schema validation: %w", err)
	}
	if !result.Valid() {
		return Override{}, fmt.Errorf("config: invalid override file: %v", result.Errors())
	}

	var o Override
	if err := json.Unmarshal(data, &o); err != nil {
		return Override{}, fmt.Errorf("config: decode override: %w", err)
	}
	return o, nil
}

// ApplyLimits merges non-zero override fields onto the negotiated base
// limits.
func (o Override) ApplyLimits(base wire.Limits) wire.Limits {
	if o.MaxFrame > 0 {
		base.MaxFrame = o.MaxFrame
	}
	if o.MaxChunk > 0 {
		base.MaxChunk = o.MaxChunk
	}
	return base
}
