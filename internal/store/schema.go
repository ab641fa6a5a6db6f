package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drivers (
    driver_id            INTEGER PRIMARY KEY AUTOINCREMENT,
    driver_name          TEXT NOT NULL,
    driver_email         TEXT NOT NULL,
    created_at           TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS driver_sessions (
    session_id           INTEGER PRIMARY KEY AUTOINCREMENT,
    driver_id            INTEGER NOT NULL REFERENCES drivers(driver_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS fatigue_events (
    event_id             INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id           INTEGER NOT NULL REFERENCES driver_sessions(session_id) ON DELETE CASCADE,
    event_time           TEXT NOT NULL,
    alert_type           TEXT NOT NULL DEFAULT '',
    eye_closed_seconds   REAL,
    alarm_triggered      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS emotions (
    emotion_id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id           INTEGER NOT NULL REFERENCES driver_sessions(session_id) ON DELETE CASCADE,
    event_time           TEXT NOT NULL,
    emotion              TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS incident_reports (
    report_id            INTEGER PRIMARY KEY AUTOINCREMENT,
    incident_date        TEXT NOT NULL,
    incident_time        TEXT NOT NULL,
    location             TEXT NOT NULL,
    description          TEXT NOT NULL,
    driver_state         TEXT NOT NULL,
    driver_id            INTEGER REFERENCES drivers(driver_id) ON DELETE SET NULL,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_driver ON driver_sessions(driver_id);
CREATE INDEX IF NOT EXISTS idx_fatigue_time ON fatigue_events(event_time);
CREATE INDEX IF NOT EXISTS idx_fatigue_session ON fatigue_events(session_id);
CREATE INDEX IF NOT EXISTS idx_emotions_time ON emotions(event_time);
CREATE INDEX IF NOT EXISTS idx_emotions_session ON emotions(session_id);
`
