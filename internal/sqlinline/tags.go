package sqlinline

const QSearchTags = `--sql 1905f022-b1da-4bc7-8a8a-4898a1f6b7ae
select name
from tags
where $1::text = '' or name ilike '%' || $1 || '%'
order by name
limit 50;
`

const QUpsertTag = `--sql ca5253d9-58c9-4071-96ed-50fb10a4eb7b
insert into tags (id, name, created_at)
values (gen_random_uuid(), $1, now())
on conflict (name) do update set name = excluded.name
returning id;
`

const QLinkDatasetTag = `--sql d713741f-d6cc-4d7e-8d18-e5338227e1b6
insert into dataset_tags (dataset_id, tag_id)
values ($1, $2)
on conflict do nothing;
`

const QClearDatasetTags = `--sql b656ad6f-ceca-431c-852b-116cf74102be
delete from dataset_tags where dataset_id = $1;
`
