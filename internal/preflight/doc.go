// Package preflight provides readiness checks for the target directory,
// romtidy's own state directories and the external tools it drives.
//
// These checks run in two contexts:
//   - The pipeline calls ValidateTarget before any stage. A failure there is
//     fatal to the run.
//   - The CLI "romtidy doctor" command uses RunAll and CheckSystemDeps to
//     display readiness without touching the target.
package preflight
