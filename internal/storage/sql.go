package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	// Indexes are created when the write connection is closed, so bulk
	// imports do not pay for index maintenance on every insert.
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_mbes_pings_survey_time ON mbes_pings (survey_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_sss_pings_survey_time ON sss_pings (survey_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_nav_entries_survey_time ON nav_entries (survey_id, timestamp);`

	insertSurveySQL = `
INSERT INTO surveys (start_time,
                     kind,
                     source,
                     config)
VALUES (?, ?, ?, ?)`

	selectSurveySQL = `
SELECT 
    id, 
    start_time, 
    kind, 
    source, 
    config 
FROM surveys 
WHERE 
    id = ?`

	selectSurveysSQL = `
SELECT 
    id, 
    start_time, 
    kind, 
    source, 
    config 
FROM surveys
ORDER BY start_time, id`

	insertPingSQL = `
INSERT INTO mbes_pings (survey_id,
                        timestamp,
                        x,
                        y,
                        z,
                        heading,
                        beams)
VALUES `

	selectPingsSQL = `
SELECT 
    timestamp, 
    x, 
    y, 
    z, 
    heading, 
    beams
FROM mbes_pings
WHERE 
    survey_id = ?
    AND timestamp BETWEEN ? AND ?
ORDER BY timestamp, id`

	insertSidescanPingSQL = `
INSERT INTO sss_pings (survey_id,
                       timestamp,
                       x,
                       y,
                       z,
                       heading,
                       port_samples,
                       port_slant_range,
                       port_duration,
                       stbd_samples,
                       stbd_slant_range,
                       stbd_duration)
VALUES `

	selectSidescanPingsSQL = `
SELECT 
    timestamp, 
    x, 
    y, 
    z, 
    heading, 
    port_samples, 
    port_slant_range, 
    port_duration, 
    stbd_samples, 
    stbd_slant_range, 
    stbd_duration
FROM sss_pings
WHERE 
    survey_id = ?
    AND timestamp BETWEEN ? AND ?
ORDER BY timestamp, id`

	insertNavEntrySQL = `
INSERT INTO nav_entries (survey_id,
                         timestamp,
                         x,
                         y,
                         z,
                         heading)
VALUES `

	selectNavEntriesSQL = `
SELECT 
    timestamp, 
    x, 
    y, 
    z, 
    heading
FROM nav_entries
WHERE 
    survey_id = ?
    AND timestamp BETWEEN ? AND ?
ORDER BY timestamp, id`
)
