package test

// initSQL mirrors the managed database: plain tables plus the functions the service calls.
const initSQL = `
CREATE TABLE public.cycling_activities
(
    id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id            UUID             NOT NULL,
    started_at         TIMESTAMPTZ      NOT NULL,
    ended_at           TIMESTAMPTZ      NOT NULL,
    duration_seconds   INTEGER          NOT NULL,
    distance_km        DOUBLE PRECISION NOT NULL,
    avg_speed_kmh      DOUBLE PRECISION,
    active_energy_kcal DOUBLE PRECISION,
    elevation_gain_m   DOUBLE PRECISION,
    avg_hr_bpm         INTEGER,
    max_hr_bpm         INTEGER,
    vo2max             DOUBLE PRECISION,
    created_at         TIMESTAMPTZ      NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ
);
CREATE INDEX ix_cycling_activities_started_at ON public.cycling_activities (started_at);
CREATE UNIQUE INDEX ux_cycling_activities_user_start ON public.cycling_activities (user_id, started_at);

CREATE FUNCTION load_cycling_activities(
    p_start TIMESTAMPTZ, p_end TIMESTAMPTZ, p_user_id UUID, p_limit INTEGER, p_offset INTEGER
)
    RETURNS SETOF public.cycling_activities
    LANGUAGE sql STABLE
AS
$$
SELECT *
FROM public.cycling_activities
WHERE started_at >= p_start
  AND started_at < p_end
  AND (p_user_id IS NULL OR user_id = p_user_id)
ORDER BY started_at
LIMIT p_limit OFFSET p_offset
$$;

CREATE FUNCTION insert_cycling_activity(
    p_user_id UUID, p_started_at TIMESTAMPTZ, p_ended_at TIMESTAMPTZ, p_duration_seconds INTEGER,
    p_distance_km DOUBLE PRECISION, p_avg_speed_kmh DOUBLE PRECISION, p_active_energy_kcal DOUBLE PRECISION,
    p_elevation_gain_m DOUBLE PRECISION, p_avg_hr_bpm INTEGER, p_max_hr_bpm INTEGER, p_vo2max DOUBLE PRECISION
)
    RETURNS UUID
    LANGUAGE sql
AS
$$
INSERT INTO public.cycling_activities (user_id, started_at, ended_at, duration_seconds, distance_km,
                                       avg_speed_kmh, active_energy_kcal, elevation_gain_m,
                                       avg_hr_bpm, max_hr_bpm, vo2max)
VALUES (p_user_id, p_started_at, p_ended_at, p_duration_seconds, p_distance_km,
        p_avg_speed_kmh, p_active_energy_kcal, p_elevation_gain_m,
        p_avg_hr_bpm, p_max_hr_bpm, p_vo2max)
RETURNING id
$$;

CREATE TABLE public.user_memories
(
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    UUID        NOT NULL,
    title      TEXT,
    content    TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp(),
    updated_at TIMESTAMPTZ
);

CREATE FUNCTION create_user_memory(p_user_id UUID, p_title TEXT, p_content TEXT)
    RETURNS UUID
    LANGUAGE sql
AS
$$
INSERT INTO public.user_memories (user_id, title, content)
VALUES (p_user_id, p_title, p_content)
RETURNING id
$$;

CREATE FUNCTION list_user_memories(p_user_id UUID, p_limit INTEGER, p_offset INTEGER)
    RETURNS SETOF public.user_memories
    LANGUAGE sql STABLE
AS
$$
SELECT *
FROM public.user_memories
WHERE user_id = p_user_id
ORDER BY created_at DESC
LIMIT p_limit OFFSET p_offset
$$;

CREATE FUNCTION delete_user_memory(p_id UUID, p_user_id UUID)
    RETURNS UUID
    LANGUAGE sql
AS
$$
DELETE
FROM public.user_memories
WHERE id = p_id
  AND user_id = p_user_id
RETURNING id
$$;

CREATE TABLE public.schedule_intervals
(
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id     UUID        NOT NULL,
    type        TEXT        NOT NULL CHECK (type IN ('Cycling', 'Work', 'Other')),
    start_at    TIMESTAMPTZ NOT NULL,
    end_at      TIMESTAMPTZ NOT NULL,
    title       TEXT,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ
);

CREATE FUNCTION snap_to_quarter_hour(p_ts TIMESTAMPTZ)
    RETURNS TIMESTAMPTZ
    LANGUAGE sql IMMUTABLE
AS
$$
SELECT to_timestamp(round(extract(EPOCH FROM p_ts) / 900) * 900)
$$;

CREATE FUNCTION list_schedule_intervals(p_start TIMESTAMPTZ, p_end TIMESTAMPTZ, p_user_id UUID, p_types TEXT[])
    RETURNS SETOF public.schedule_intervals
    LANGUAGE sql STABLE
AS
$$
SELECT *
FROM public.schedule_intervals
WHERE start_at < p_end
  AND end_at > p_start
  AND (p_user_id IS NULL OR user_id = p_user_id)
  AND (p_types IS NULL OR cardinality(p_types) = 0 OR type = ANY (p_types))
ORDER BY start_at
$$;

CREATE FUNCTION create_schedule_interval(
    p_user_id UUID, p_type TEXT, p_start TIMESTAMPTZ, p_end TIMESTAMPTZ, p_title TEXT, p_description TEXT
)
    RETURNS UUID
    LANGUAGE sql
AS
$$
INSERT INTO public.schedule_intervals (user_id, type, start_at, end_at, title, description)
VALUES (p_user_id, p_type, snap_to_quarter_hour(p_start), snap_to_quarter_hour(p_end), p_title, p_description)
RETURNING id
$$;

CREATE FUNCTION update_schedule_interval_by_id(
    p_id UUID, p_new_start TIMESTAMPTZ, p_new_end TIMESTAMPTZ, p_type TEXT,
    p_title TEXT, p_description TEXT, p_snap BOOLEAN
)
    RETURNS SETOF public.schedule_intervals
    LANGUAGE sql
AS
$$
UPDATE public.schedule_intervals
SET start_at    = CASE
                      WHEN p_new_start IS NULL THEN start_at
                      WHEN p_snap THEN snap_to_quarter_hour(p_new_start)
                      ELSE p_new_start END,
    end_at      = CASE
                      WHEN p_new_end IS NULL THEN end_at
                      WHEN p_snap THEN snap_to_quarter_hour(p_new_end)
                      ELSE p_new_end END,
    type        = coalesce(p_type, type),
    title       = coalesce(p_title, title),
    description = coalesce(p_description, description),
    updated_at  = now()
WHERE id = p_id
RETURNING *
$$;

CREATE FUNCTION delete_schedule_interval_by_id(p_id UUID)
    RETURNS UUID
    LANGUAGE sql
AS
$$
DELETE
FROM public.schedule_intervals
WHERE id = p_id
RETURNING id
$$;
`
