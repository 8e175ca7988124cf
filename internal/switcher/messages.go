package switcher

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Command names understood by the ATEM bridge.
const (
	CmdSetProgram            = "set_program"
	CmdSetPreview            = "set_preview"
	CmdCut                   = "cut"
	CmdAuto                  = "auto"
	CmdFadeToBlack           = "fade_to_black"
	CmdSetTransitionPosition = "set_transition_position"
	CmdSetTransitionStyle    = "set_transition_style"
	CmdSetTransitionRate     = "set_transition_rate"
	CmdSetUSKOnAir           = "set_usk_on_air"
	CmdSetUSKTie             = "set_usk_tie"
	CmdSetUSKFill            = "set_usk_fill"
	CmdSetUSKCut             = "set_usk_cut"
	CmdSetDSKOnAir           = "set_dsk_on_air"
	CmdSetDSKTie             = "set_dsk_tie"
	CmdAutoDSK               = "auto_dsk"
	CmdSetDSKFill            = "set_dsk_fill"
	CmdSetDSKCut             = "set_dsk_cut"
	CmdSetAuxSource          = "set_aux_source"
	CmdRunMacro              = "run_macro"
	CmdStopMacro             = "stop_macro"
	CmdSetMediaPlayerClip    = "set_media_player_clip"
	CmdSetMediaPlayerStill   = "set_media_player_still"
	CmdSetSuperSourceEnabled = "set_supersource_box_enabled"
	CmdSetSuperSourceSource  = "set_supersource_box_source"
	CmdSetAudioInputGain     = "set_audio_input_gain"
	CmdSetAudioInputBalance  = "set_audio_input_balance"
	CmdSetAudioOutputGain    = "set_audio_output_gain"
	CmdStartRecording        = "start_recording"
	CmdStopRecording         = "stop_recording"
	CmdStartStreaming        = "start_streaming"
	CmdStopStreaming         = "stop_streaming"
	CmdRequestStatus         = "request_status"
)

// Transition styles accepted by CmdSetTransitionStyle.
var TransitionStyles = []string{"mix", "dip", "wipe", "sting", "dve"}

// SourceOSC marks commands that originated from an OSC control surface.
const SourceOSC = "osc"

// CommandMessage is published to the ATEM bridge to change switcher state.
// Topic: graylogic/command/atem/{switcher_id}
type CommandMessage struct {
	// ID correlates the command with its acknowledgement.
	ID string `json:"id"`

	// Timestamp is when the command was issued (UTC).
	Timestamp time.Time `json:"timestamp"`

	// SwitcherID identifies the target switcher.
	SwitcherID string `json:"switcher_id"`

	// Command is one of the Cmd* constants.
	Command string `json:"command"`

	// Parameters carries command-specific values, e.g. {"me": 1, "input": 3}.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Source is where the command came from ("osc" or "api").
	Source string `json:"source"`
}

// NewCommand creates a CommandMessage with a fresh ID and timestamp.
func NewCommand(switcherID, command string, params map[string]any) CommandMessage {
	return CommandMessage{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		SwitcherID: switcherID,
		Command:    command,
		Parameters: params,
		Source:     SourceOSC,
	}
}

// Validate checks that the command can be published.
func (c CommandMessage) Validate() error {
	if c.ID == "" || c.SwitcherID == "" || c.Command == "" {
		return fmt.Errorf("%w: id, switcher_id and command are required", ErrInvalidCommand)
	}
	return nil
}

// AckStatus is the outcome reported by the ATEM bridge for a command.
type AckStatus string

const (
	// AckAccepted indicates the switcher applied the command.
	AckAccepted AckStatus = "accepted"

	// AckFailed indicates the command could not be executed.
	AckFailed AckStatus = "failed"

	// AckTimeout indicates the switcher did not respond in time.
	AckTimeout AckStatus = "timeout"
)

// AckMessage is published by the ATEM bridge for each command it handles.
// Topic: graylogic/ack/atem/{switcher_id}
type AckMessage struct {
	CommandID  string    `json:"command_id"`
	Timestamp  time.Time `json:"timestamp"`
	SwitcherID string    `json:"switcher_id"`
	Status     AckStatus `json:"status"`
	Error      *AckError `json:"error,omitempty"`
}

// AckError contains error details for failed commands.
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Topology describes the resources of the connected switcher model.
type Topology struct {
	MixEffects       int `json:"mix_effects"`
	Inputs           int `json:"inputs"`
	Aux              int `json:"aux"`
	UpstreamKeyers   int `json:"upstream_keyers"`
	DownstreamKeyers int `json:"downstream_keyers"`
	MediaPlayers     int `json:"media_players"`
	MediaClips       int `json:"media_clips"`
	MediaStills      int `json:"media_stills"`
	Macros           int `json:"macros"`
	SuperSourceBoxes int `json:"supersource_boxes"`
	AudioInputs      int `json:"audio_inputs"`
}

// MixEffectState is the live state of one mix effect block.
type MixEffectState struct {
	Program            int     `json:"program"`
	Preview            int     `json:"preview"`
	TransitionPosition float64 `json:"transition_position"`
	InTransition       bool    `json:"in_transition"`
	FadeToBlack        bool    `json:"fade_to_black"`
}

// StateMessage is published by the ATEM bridge when switcher state changes.
// Nil fields are left unchanged, so bridges may send partial updates.
// Topic: graylogic/state/atem/{switcher_id}
type StateMessage struct {
	SwitcherID   string                 `json:"switcher_id"`
	Timestamp    time.Time              `json:"timestamp"`
	Connected    *bool                  `json:"connected,omitempty"`
	Model        string                 `json:"model,omitempty"`
	Topology     *Topology              `json:"topology,omitempty"`
	MixEffects   map[int]MixEffectState `json:"mix_effects,omitempty"`
	Recording    *bool                  `json:"recording,omitempty"`
	Streaming    *bool                  `json:"streaming,omitempty"`
	MacroRunning *int                   `json:"macro_running,omitempty"`
}
