// Package harness runs scripted sync scenarios against a real Engine.
//
// A scenario scripts the save server, the possibility draws and a list of
// engine operations, then asserts on the final engine state. Every step is
// recorded in a trace so runs can be compared with golden files.
//
// # Scenario Format
//
//	name: possibility_commit
//	description: "A possibility hit commits success and appends the result"
//	manifest: ../story.yaml
//	server:
//	  saves:
//	    - id: 1
//	      lines: ["start a01_a001_a001", "play 01_001_001"]
//	      actions: ["trigger possibility_trigger s success", "trigger possibility_trigger f failure"]
//	  act:
//	    - id: 1
//	      lines: ["start a01_a001_a001", "play 01_001_001", "play 01_001_002"]
//	      actions: ["button Stay stay"]
//	  jump:
//	    a01_a001_a001: { id: 1, lines: ["start a01_a001_a001", "play 01_001_001"] }
//	roll: [true]
//	steps:
//	  - op: full_sync
//	  - op: commit
//	    index: 0
//	  - op: rewind
//	    id: zz_999
//	    expect_error: UNRESOLVABLE_REWIND
//	assertions:
//	  - type: queue_videos
//	    videos: ["01_001_001", "01_001_002"]
//
// Lines are written "start S", "end S", "play V", "qte NAME", "badge B" or
// "value KEY N". Pending actions are "button LABEL KEY" or
// "trigger NAME KEY LABEL".
//
// # Assertion Types
//
//   - queue_videos: the queue plays exactly these videos
//   - last_loop: the loop flag of the last instruction
//   - group_types: the action group types of the last instruction
//   - commits: the act indices sent to the server, in order
//   - cursor: the cursor state, and optionally the current video
//   - trigger_count: the count-trigger counter
//   - error: the error code recorded for a step
//
// # Deterministic Testing
//
// Runs use a FixedRoller for draws and sequential pass ids, and discard
// logs, so traces are identical across runs.
package harness
