package sqlinline

const QSearchDatasets = `--sql 538cf2dc-a076-4065-8e1d-196fbeae9630
with filtered as (
    select d.id, d.title, d.description, d.provider,
           d.temporal_resolution, d.spatial_resolution,
           d.start_date, d.end_date,
           d.asset_url, d.thumbnail_url, d.documentation_url,
           d.updated_at,
           coalesce(array_agg(t.name order by t.name) filter (where t.name is not null), '{}') as tags
    from datasets d
    left join dataset_tags dt on dt.dataset_id = d.id
    left join tags t on t.id = dt.tag_id
    where ($1::text = '' or d.id ilike '%' || $1 || '%' or d.title ilike '%' || $1 || '%')
    group by d.id
    having ($2::text[] = '{}' or $2::text[] <@ coalesce(array_agg(lower(t.name)) filter (where t.name is not null), '{}'))
)
select id, title, description, provider,
       temporal_resolution, spatial_resolution,
       start_date, end_date,
       asset_url, thumbnail_url, documentation_url,
       updated_at, tags,
       count(*) over () as total_count
from filtered
order by
    case when $3::text = 'title' then lower(title) end asc,
    case when $3::text = 'provider' then lower(provider) end asc,
    case when $3::text = 'updated' then updated_at end desc,
    lower(title) asc
limit $4 offset $5;
`

const QSelectDataset = `--sql 56c0858b-0a36-4052-911d-77ac3511c41f
select d.id, d.title, d.description, d.provider,
       d.temporal_resolution, d.spatial_resolution,
       d.start_date, d.end_date,
       d.asset_url, d.thumbnail_url, d.documentation_url,
       d.updated_at,
       coalesce(array_agg(t.name order by t.name) filter (where t.name is not null), '{}') as tags
from datasets d
left join dataset_tags dt on dt.dataset_id = d.id
left join tags t on t.id = dt.tag_id
where d.id = $1
group by d.id;
`

const QUpsertDataset = `--sql 58388f42-0931-4851-983e-f7cabebab0dd
insert into datasets (
    id, title, description, provider,
    start_date, end_date, temporal_resolution, spatial_resolution,
    asset_url, thumbnail_url, documentation_url,
    created_at, updated_at
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
on conflict (id) do update set
    title = excluded.title,
    description = excluded.description,
    provider = excluded.provider,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    temporal_resolution = excluded.temporal_resolution,
    spatial_resolution = excluded.spatial_resolution,
    asset_url = excluded.asset_url,
    thumbnail_url = excluded.thumbnail_url,
    documentation_url = excluded.documentation_url,
    updated_at = now()
returning (xmax = 0) as inserted;
`
