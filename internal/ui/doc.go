// Package ui contains the Bubble Tea program that renders the tab mirror.
//
// The mirror is not safe for concurrent use, so the update loop owns it:
// every host event, refresh tick and user action is applied from
// Model.Update.
//
// Message flow:
//   - A backend.Watcher streams host events. Update hands each one to the
//     dispatcher, which patches the snapshot or asks for a full refresh.
//   - Deferred refreshes are driven by tea.Tick commands armed from the
//     mirror's refresh deadline after every update.
//   - Key presses run mirror actions through the command bus, which traces
//     them and reports a command.Result back into Update.
//   - After the first refresh, windows are mounted one per update so large
//     snapshots render progressively.
package ui
