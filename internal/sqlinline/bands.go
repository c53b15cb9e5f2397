package sqlinline

const QSelectDatasetBands = `--sql 4f1fddd1-e309-489a-9bed-5190535e4d9a
select name, description, units, data_type
from dataset_bands
where dataset_id = $1
order by name;
`

const QUpsertDatasetBand = `--sql a6083c96-10fc-45f5-8e4b-baaefa964f29
insert into dataset_bands (dataset_id, name, description, units, data_type)
values ($1, $2, $3, $4, $5)
on conflict (dataset_id, name) do update set
    description = excluded.description,
    units = excluded.units,
    data_type = excluded.data_type;
`
