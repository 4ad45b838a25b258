package postgres

// Migrations: схема БД по версиям. SQL встроен в код для упрощения деплоя.
// Уже применённые версии не меняются: исправления идут новой миграцией.
var Migrations = []Migration{
	{Version: 1, Name: "members", SQL: migration001Members},
	{Version: 2, Name: "user_progress", SQL: migration002Progress},
	{Version: 3, Name: "recycling_events", SQL: migration003Events},
	{Version: 4, Name: "badges", SQL: migration004Badges},
	{Version: 5, Name: "companions", SQL: migration005Companions},
	{Version: 6, Name: "admin", SQL: migration006Admin},
	{Version: 7, Name: "seed_badges", SQL: migration007SeedBadges},
	{Version: 8, Name: "seed_companions", SQL: migration008SeedCompanions},
}

const migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    user_id BIGINT PRIMARY KEY,
    username VARCHAR(255) NOT NULL DEFAULT '',
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    last_name VARCHAR(255) NOT NULL DEFAULT '',
    display_name VARCHAR(50) NOT NULL DEFAULT '',
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    is_premium BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
`

const migration002Progress = `
CREATE TABLE IF NOT EXISTS user_progress (
    user_id BIGINT PRIMARY KEY REFERENCES members(user_id),
    total_carbon_saved DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (total_carbon_saved >= 0),
    total_water_saved DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (total_water_saved >= 0),
    streak_current INTEGER NOT NULL DEFAULT 0 CHECK (streak_current >= 0),
    streak_best INTEGER NOT NULL DEFAULT 0 CHECK (streak_best >= streak_current),
    streak_last_log_date DATE,
    selected_companion_id BIGINT,
    companion_points BIGINT NOT NULL DEFAULT 0 CHECK (companion_points >= 0),
    reminder_sent_on DATE,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_progress_streak ON user_progress(streak_last_log_date, streak_current);
`

const migration003Events = `
CREATE TABLE IF NOT EXISTS recycling_events (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    material VARCHAR(20) NOT NULL
        CHECK (material IN ('aluminum', 'plastic', 'glass', 'paper', 'steel', 'cardboard')),
    item_count INTEGER NOT NULL CHECK (item_count BETWEEN 1 AND 999),
    carbon_saved DOUBLE PRECISION NOT NULL,
    water_saved DOUBLE PRECISION NOT NULL,
    logged_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_recycling_events_user_logged ON recycling_events(user_id, logged_at DESC);
CREATE INDEX IF NOT EXISTS idx_recycling_events_logged ON recycling_events(logged_at);
`

const migration004Badges = `
CREATE TABLE IF NOT EXISTS badges (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(50) UNIQUE NOT NULL,
    name VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    emoji VARCHAR(16) NOT NULL DEFAULT '🏅',
    criteria_kind VARCHAR(20) NOT NULL
        CHECK (criteria_kind IN ('total_logs', 'streak', 'total_items', 'carbon_saved')),
    threshold DOUBLE PRECISION NOT NULL CHECK (threshold > 0)
);
CREATE TABLE IF NOT EXISTS user_badges (
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    badge_id BIGINT NOT NULL REFERENCES badges(id),
    earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, badge_id)
);
`

const migration005Companions = `
CREATE TABLE IF NOT EXISTS companions (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    emoji VARCHAR(16) NOT NULL,
    color VARCHAR(16) NOT NULL DEFAULT '',
    conservation_status VARCHAR(50) NOT NULL DEFAULT '',
    is_premium BOOLEAN NOT NULL DEFAULT FALSE,
    price_cents BIGINT
);
CREATE TABLE IF NOT EXISTS companion_stages (
    companion_id BIGINT NOT NULL REFERENCES companions(id),
    stage_number INTEGER NOT NULL CHECK (stage_number BETWEEN 1 AND 5),
    points_required BIGINT NOT NULL CHECK (points_required >= 0),
    stage_name VARCHAR(100) NOT NULL,
    PRIMARY KEY (companion_id, stage_number)
);
CREATE TABLE IF NOT EXISTS user_companions (
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    companion_id BIGINT NOT NULL REFERENCES companions(id),
    current_stage INTEGER NOT NULL DEFAULT 1 CHECK (current_stage BETWEEN 1 AND 5),
    unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, companion_id)
);
ALTER TABLE user_progress
    ADD CONSTRAINT fk_user_progress_companion
    FOREIGN KEY (selected_companion_id) REFERENCES companions(id);
`

const migration006Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    session_token VARCHAR(255) UNIQUE NOT NULL,
    authenticated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_user ON admin_login_attempts(user_id, attempt_time);
`

const migration007SeedBadges = `
INSERT INTO badges (code, name, description, emoji, criteria_kind, threshold) VALUES
    ('first_step',     'Первый шаг',        'Первая запись о сдаче',           '🌱', 'total_logs',   1),
    ('regular',        'Завсегдатай',       'Десять записей о сдаче',          '♻️', 'total_logs',   10),
    ('week_fire',      'Неделя огня',       'Сдавать вторсырьё 7 дней подряд', '🔥', 'streak',       7),
    ('month_fire',     'Месяц огня',        '30 дней подряд без пропусков',    '🌋', 'streak',       30),
    ('hundred_items',  'Сотня',             'Сдано 100 предметов',             '💯', 'total_items',  100),
    ('thousand_items', 'Тысячник',          'Сдано 1000 предметов',            '🏔', 'total_items',  1000),
    ('five_kilo',      'Лёгкое дыхание',    'Сэкономлено 5 кг CO₂',            '🍃', 'carbon_saved', 5),
    ('fifty_kilo',     'Хранитель климата', 'Сэкономлено 50 кг CO₂',           '🌍', 'carbon_saved', 50)
ON CONFLICT (code) DO NOTHING;
`

const migration008SeedCompanions = `
INSERT INTO companions (id, name, emoji, color, conservation_status, is_premium, price_cents) VALUES
    (1, 'Панда',             '🐼', '#2E7D32', 'Уязвимый вид',               FALSE, NULL),
    (2, 'Морская черепаха',  '🐢', '#00897B', 'Под угрозой исчезновения',   FALSE, NULL),
    (3, 'Белый медведь',     '🐻‍❄️', '#90CAF9', 'Уязвимый вид',               FALSE, NULL),
    (4, 'Амурский тигр',     '🐅', '#EF6C00', 'Под угрозой исчезновения',   TRUE,  49900),
    (5, 'Синий кит',         '🐋', '#1565C0', 'Под угрозой исчезновения',   TRUE,  49900),
    (6, 'Снежный барс',      '🐆', '#78909C', 'Уязвимый вид',               TRUE,  49900)
ON CONFLICT (id) DO NOTHING;
SELECT setval(pg_get_serial_sequence('companions', 'id'), (SELECT MAX(id) FROM companions));

INSERT INTO companion_stages (companion_id, stage_number, points_required, stage_name)
SELECT c.id, s.stage_number, s.points_required, s.stage_name
FROM companions c
CROSS JOIN (VALUES
    (1, 0,    'Малыш'),
    (2, 150,  'Детёныш'),
    (3, 500,  'Подросток'),
    (4, 1500, 'Взрослый'),
    (5, 4000, 'Легенда')
) AS s(stage_number, points_required, stage_name)
ON CONFLICT (companion_id, stage_number) DO NOTHING;
`
