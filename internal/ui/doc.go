// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard has three views, switched with 1/2/3 or tab:
//  1. [TracksView] : the user's top tracks
//  2. [ArtistsView] : the user's top artists with their genres
//  3. [GenresView] : a bar chart of the most common genres across the top 50 artists
//
// Pressing t cycles the time range (last 4 weeks, last 6 months, all time). Data is fetched by tea.Cmd functions
// that call [services.StatsService] off the UI goroutine; results arrive as [Msg] values and results for a time
// range the user has already left are dropped.
//
// Colors come from a [Theme] (spotify, midnight or mono), also used by the web dashboard.
package ui
