package database

// Schema is the complete current schema plus the seeded achievement catalog.
// It must stay equivalent to applying every migration in
// migrations/files in order; tests apply it directly to in-memory
// databases instead of running the migration machinery.
const Schema = `
CREATE TABLE books (
    id            INTEGER PRIMARY KEY,
    name          TEXT    NOT NULL,
    testament     TEXT    NOT NULL CHECK (testament IN ('OLD', 'NEW')),
    abbreviation  TEXT    NOT NULL,
    chapter_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE chapters (
    id             INTEGER PRIMARY KEY,
    book_id        INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
    chapter_number INTEGER NOT NULL,
    UNIQUE (book_id, chapter_number)
);

CREATE TABLE verses (
    id            INTEGER PRIMARY KEY,
    chapter_id    INTEGER NOT NULL REFERENCES chapters (id) ON DELETE CASCADE,
    verse_number  INTEGER NOT NULL,
    text          TEXT    NOT NULL,
    is_delivered  INTEGER NOT NULL DEFAULT 0,
    delivered_at  TIMESTAMP,
    UNIQUE (chapter_id, verse_number)
);

CREATE INDEX idx_verses_undelivered ON verses (is_delivered) WHERE is_delivered = 0;

CREATE TABLE prayer_sessions (
    id             INTEGER   PRIMARY KEY AUTOINCREMENT,
    scheduled_time TEXT      NOT NULL,
    prayed_at      TIMESTAMP NOT NULL,
    logged_at      TIMESTAMP NOT NULL,
    points_earned  INTEGER   NOT NULL,
    streak_day     INTEGER   NOT NULL,
    is_manual      INTEGER   NOT NULL,
    date           TEXT      NOT NULL
);

CREATE INDEX idx_prayer_sessions_date ON prayer_sessions (date);

CREATE TABLE achievements (
    id             TEXT    PRIMARY KEY,
    title          TEXT    NOT NULL,
    description    TEXT    NOT NULL,
    icon           TEXT    NOT NULL,
    required_value INTEGER NOT NULL,
    category       TEXT    NOT NULL CHECK (category IN ('STREAK', 'CONSISTENCY', 'MILESTONE')),
    is_unlocked    INTEGER NOT NULL DEFAULT 0,
    unlocked_at    TIMESTAMP,
    points_reward  INTEGER NOT NULL
);

CREATE TABLE users (
    id                  TEXT    PRIMARY KEY,
    email               TEXT    NOT NULL,
    display_name        TEXT    NOT NULL,
    photo_url           TEXT,
    is_signed_in        INTEGER NOT NULL DEFAULT 0,
    last_sync_at        TIMESTAMP,
    total_prayer_points INTEGER NOT NULL DEFAULT 0,
    current_streak      INTEGER NOT NULL DEFAULT 0,
    longest_streak      INTEGER NOT NULL DEFAULT 0
);

INSERT INTO achievements (id, title, description, icon, required_value, category, points_reward) VALUES
    ('first_prayer', 'First Prayer',      'Log your first prayer',             'ic_first_prayer', 1,   'MILESTONE', 10),
    ('prayer_10',    'Faithful Ten',      'Log 10 prayers',                    'ic_prayer_10',    10,  'MILESTONE', 25),
    ('prayer_50',    'Prayer Warrior',    'Log 50 prayers',                    'ic_prayer_50',    50,  'MILESTONE', 100),
    ('prayer_100',   'Century of Prayer', 'Log 100 prayers',                   'ic_prayer_100',   100, 'MILESTONE', 250),
    ('streak_7',     'One Week Strong',   'Reach a 7-day prayer streak',       'ic_streak_7',     7,   'STREAK',    50),
    ('streak_30',    'Monthly Devotion',  'Reach a 30-day prayer streak',      'ic_streak_30',    30,  'STREAK',    150),
    ('streak_100',   'Unwavering',        'Reach a 100-day prayer streak',     'ic_streak_100',   100, 'STREAK',    500);
`
