// Package storagetest provides in-memory implementations of the storage
// clients for tests.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"

	"github.com/demoray/azure-storage-blob-client/internal/credential"
	"github.com/demoray/azure-storage-blob-client/internal/models"
	"github.com/demoray/azure-storage-blob-client/internal/storage"
)

// Now is the timestamp stamped on everything the fakes create.
var Now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// Build records one client construction.
type Build struct {
	Family     storage.Family
	Account    string
	Credential credential.Credential
	// Name is the container for FamilyContainer builds.
	Name string
}

// Factory is a storage.Factory backed by shared in-memory state. Calls
// records every client operation as "Method arg...".
type Factory struct {
	// Err, when set, is returned by every constructor.
	Err error

	// Info is returned by the account client.
	Info models.AccountInfo

	mu         sync.Mutex
	builds     []Build
	calls      []string
	containers map[string]map[string][]byte
	queues     map[string][]string
	fileSystem map[string]map[string][]byte
	tables     map[string]map[string]models.Entity
}

var _ storage.Factory = (*Factory)(nil)

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{
		containers: map[string]map[string][]byte{},
		queues:     map[string][]string{},
		fileSystem: map[string]map[string][]byte{},
		tables:     map[string]map[string]models.Entity{},
	}
}

// Builds returns the recorded client constructions.
func (f *Factory) Builds() []Build {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Build(nil), f.builds...)
}

// Calls returns the recorded operations.
func (f *Factory) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// AddContainer creates a container holding blobs.
func (f *Factory) AddContainer(name string, blobs map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content := map[string][]byte{}
	for k, v := range blobs {
		content[k] = []byte(v)
	}
	f.containers[name] = content
}

// AddQueue creates a queue holding messages.
func (f *Factory) AddQueue(name string, messages ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[name] = append([]string{}, messages...)
}

// AddFileSystem creates a datalake filesystem holding files.
func (f *Factory) AddFileSystem(name string, files map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content := map[string][]byte{}
	for k, v := range files {
		content[k] = []byte(v)
	}
	f.fileSystem[name] = content
}

// AddTable creates a table holding entities.
func (f *Factory) AddTable(name string, entities ...models.Entity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := map[string]models.Entity{}
	for _, e := range entities {
		rows[entityKey(e.PartitionKey(), e.RowKey())] = e
	}
	f.tables[name] = rows
}

// Blob returns the content of a blob and whether it exists.
func (f *Factory) Blob(container, name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.containers[container][name]
	return string(data), ok
}

// Messages returns the messages left in a queue.
func (f *Factory) Messages(queue string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queues[queue]...)
}

func (f *Factory) build(b Build) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds = append(f.builds, b)
	return f.Err
}

func (f *Factory) record(call string, args ...string) {
	f.calls = append(f.calls, strings.TrimSpace(call+" "+strings.Join(args, " ")))
}

// Account implements storage.Factory.
func (f *Factory) Account(account string, cred credential.Credential) (storage.AccountClient, error) {
	if err := f.build(Build{Family: storage.FamilyAccount, Account: account, Credential: cred}); err != nil {
		return nil, err
	}
	return &accountClient{f: f, account: account}, nil
}

// Container implements storage.Factory.
func (f *Factory) Container(account string, cred credential.Credential, name string) (storage.ContainerClient, error) {
	if err := f.build(Build{Family: storage.FamilyContainer, Account: account, Credential: cred, Name: name}); err != nil {
		return nil, err
	}
	return &containerClient{f: f, name: name}, nil
}

// Queues implements storage.Factory.
func (f *Factory) Queues(account string, cred credential.Credential) (storage.QueueClient, error) {
	if err := f.build(Build{Family: storage.FamilyQueues, Account: account, Credential: cred}); err != nil {
		return nil, err
	}
	return &queueClient{f: f}, nil
}

// Datalake implements storage.Factory.
func (f *Factory) Datalake(account string, cred credential.Credential) (storage.DatalakeClient, error) {
	if err := f.build(Build{Family: storage.FamilyDatalake, Account: account, Credential: cred}); err != nil {
		return nil, err
	}
	return &datalakeClient{f: f}, nil
}

// Tables implements storage.Factory.
func (f *Factory) Tables(account string, cred credential.Credential) (storage.TableClient, error) {
	if err := f.build(Build{Family: storage.FamilyTables, Account: account, Credential: cred}); err != nil {
		return nil, err
	}
	return &tableClient{f: f}, nil
}

// ResponseError builds the error the SDK returns for an HTTP status.
func ResponseError(status int, code string) error {
	return &azcore.ResponseError{StatusCode: status, ErrorCode: code}
}

func notFound(kind, name string) error {
	return fmt.Errorf("%s %s: %w", kind, name, ResponseError(http.StatusNotFound, kind+"NotFound"))
}

func conflict(kind, name string) error {
	return fmt.Errorf("%s %s: %w", kind, name, ResponseError(http.StatusConflict, kind+"AlreadyExists"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accountClient struct {
	f       *Factory
	account string
}

func (a *accountClient) ListContainers(_ context.Context, prefix string) ([]models.ContainerItem, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	a.f.record("ListContainers", prefix)

	items := []models.ContainerItem{}
	for _, name := range sortedKeys(a.f.containers) {
		if strings.HasPrefix(name, prefix) {
			items = append(items, models.ContainerItem{Name: name, LastModified: Now})
		}
	}
	return items, nil
}

func (a *accountClient) Info(_ context.Context) (*models.AccountInfo, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	a.f.record("Info")

	info := a.f.Info
	info.Account = a.account
	return &info, nil
}

type containerClient struct {
	f    *Factory
	name string
}

func (c *containerClient) Name() string { return c.name }

// blobs must be called with the lock held.
func (c *containerClient) blobs() (map[string][]byte, error) {
	blobs, ok := c.f.containers[c.name]
	if !ok {
		return nil, notFound("Container", c.name)
	}
	return blobs, nil
}

func (c *containerClient) Create(_ context.Context) error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("Create", c.name)

	if _, ok := c.f.containers[c.name]; ok {
		return conflict("Container", c.name)
	}
	c.f.containers[c.name] = map[string][]byte{}
	return nil
}

func (c *containerClient) Delete(_ context.Context) error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("Delete", c.name)

	if _, err := c.blobs(); err != nil {
		return err
	}
	delete(c.f.containers, c.name)
	return nil
}

func (c *containerClient) Exists(_ context.Context) (bool, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("Exists", c.name)

	_, ok := c.f.containers[c.name]
	return ok, nil
}

func (c *containerClient) Properties(_ context.Context) (*models.ContainerProperties, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("Properties", c.name)

	if _, err := c.blobs(); err != nil {
		return nil, err
	}
	return &models.ContainerProperties{Name: c.name, LastModified: Now, LeaseState: "available"}, nil
}

func (c *containerClient) ListBlobs(_ context.Context, prefix string) ([]models.BlobItem, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("ListBlobs", c.name, prefix)

	blobs, err := c.blobs()
	if err != nil {
		return nil, err
	}
	items := []models.BlobItem{}
	for _, name := range sortedKeys(blobs) {
		if strings.HasPrefix(name, prefix) {
			items = append(items, models.BlobItem{
				Name:          name,
				BlobType:      "BlockBlob",
				ContentLength: int64(len(blobs[name])),
				LastModified:  Now,
			})
		}
	}
	return items, nil
}

func (c *containerClient) UploadBlob(_ context.Context, name string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("UploadBlob", c.name, name)

	blobs, err := c.blobs()
	if err != nil {
		return err
	}
	blobs[name] = data
	return nil
}

func (c *containerClient) DownloadBlob(_ context.Context, name string, w io.Writer) (int64, error) {
	c.f.mu.Lock()
	c.f.record("DownloadBlob", c.name, name)
	blobs, err := c.blobs()
	var data []byte
	var ok bool
	if err == nil {
		data, ok = blobs[name]
	}
	c.f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, notFound("Blob", name)
	}
	return io.Copy(w, bytes.NewReader(data))
}

func (c *containerClient) DeleteBlob(_ context.Context, name string) error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("DeleteBlob", c.name, name)

	blobs, err := c.blobs()
	if err != nil {
		return err
	}
	if _, ok := blobs[name]; !ok {
		return notFound("Blob", name)
	}
	delete(blobs, name)
	return nil
}

func (c *containerClient) BlobExists(_ context.Context, name string) (bool, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("BlobExists", c.name, name)

	_, ok := c.f.containers[c.name][name]
	return ok, nil
}

func (c *containerClient) BlobProperties(_ context.Context, name string) (*models.BlobProperties, error) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.record("BlobProperties", c.name, name)

	blobs, err := c.blobs()
	if err != nil {
		return nil, err
	}
	data, ok := blobs[name]
	if !ok {
		return nil, notFound("Blob", name)
	}
	return &models.BlobProperties{
		Name:          name,
		BlobType:      "BlockBlob",
		ContentLength: int64(len(data)),
		AccessTier:    "Hot",
		LastModified:  Now,
	}, nil
}

type queueClient struct {
	f *Factory
}

func (q *queueClient) queue(name string) ([]string, error) {
	messages, ok := q.f.queues[name]
	if !ok {
		return nil, notFound("Queue", name)
	}
	return messages, nil
}

func (q *queueClient) ListQueues(_ context.Context, prefix string) ([]models.QueueItem, error) {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("ListQueues", prefix)

	items := []models.QueueItem{}
	for _, name := range sortedKeys(q.f.queues) {
		if strings.HasPrefix(name, prefix) {
			items = append(items, models.QueueItem{Name: name})
		}
	}
	return items, nil
}

func (q *queueClient) CreateQueue(_ context.Context, name string) error {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("CreateQueue", name)

	if _, ok := q.f.queues[name]; ok {
		return conflict("Queue", name)
	}
	q.f.queues[name] = []string{}
	return nil
}

func (q *queueClient) DeleteQueue(_ context.Context, name string) error {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("DeleteQueue", name)

	if _, err := q.queue(name); err != nil {
		return err
	}
	delete(q.f.queues, name)
	return nil
}

func (q *queueClient) QueueProperties(_ context.Context, name string) (*models.QueueProperties, error) {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("QueueProperties", name)

	messages, err := q.queue(name)
	if err != nil {
		return nil, err
	}
	return &models.QueueProperties{Name: name, ApproximateMessagesCount: int32(len(messages))}, nil
}

func (q *queueClient) Send(_ context.Context, queue, text string) (*models.Message, error) {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("Send", queue, text)

	messages, err := q.queue(queue)
	if err != nil {
		return nil, err
	}
	q.f.queues[queue] = append(messages, text)
	return &models.Message{
		MessageID:      fmt.Sprintf("msg-%d", len(messages)+1),
		MessageText:    text,
		InsertionTime:  Now,
		ExpirationTime: Now.Add(7 * 24 * time.Hour),
	}, nil
}

func (q *queueClient) take(queue string, count int32) ([]models.Message, []string, error) {
	messages, err := q.queue(queue)
	if err != nil {
		return nil, nil, err
	}
	n := int(count)
	if n <= 0 || n > len(messages) {
		n = len(messages)
	}
	out := make([]models.Message, 0, n)
	for i, text := range messages[:n] {
		out = append(out, models.Message{MessageID: fmt.Sprintf("msg-%d", i+1), MessageText: text, DequeueCount: 1})
	}
	return out, messages[n:], nil
}

func (q *queueClient) Peek(_ context.Context, queue string, count int32) ([]models.Message, error) {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("Peek", queue, fmt.Sprint(count))

	out, _, err := q.take(queue, count)
	return out, err
}

func (q *queueClient) Receive(_ context.Context, queue string, count int32, keep bool) ([]models.Message, error) {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("Receive", queue, fmt.Sprint(count), fmt.Sprint(keep))

	out, rest, err := q.take(queue, count)
	if err != nil {
		return nil, err
	}
	if !keep {
		q.f.queues[queue] = append([]string{}, rest...)
	}
	return out, nil
}

func (q *queueClient) Clear(_ context.Context, queue string) error {
	q.f.mu.Lock()
	defer q.f.mu.Unlock()
	q.f.record("Clear", queue)

	if _, err := q.queue(queue); err != nil {
		return err
	}
	q.f.queues[queue] = []string{}
	return nil
}

type datalakeClient struct {
	f *Factory
}

func (d *datalakeClient) files(fileSystem string) (map[string][]byte, error) {
	files, ok := d.f.fileSystem[fileSystem]
	if !ok {
		return nil, notFound("FileSystem", fileSystem)
	}
	return files, nil
}

func (d *datalakeClient) ListFileSystems(_ context.Context, prefix string) ([]models.FileSystemItem, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("ListFileSystems", prefix)

	items := []models.FileSystemItem{}
	for _, name := range sortedKeys(d.f.fileSystem) {
		if strings.HasPrefix(name, prefix) {
			items = append(items, models.FileSystemItem{Name: name, LastModified: Now})
		}
	}
	return items, nil
}

func (d *datalakeClient) CreateFileSystem(_ context.Context, name string) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("CreateFileSystem", name)

	if _, ok := d.f.fileSystem[name]; ok {
		return conflict("FileSystem", name)
	}
	d.f.fileSystem[name] = map[string][]byte{}
	return nil
}

func (d *datalakeClient) DeleteFileSystem(_ context.Context, name string) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("DeleteFileSystem", name)

	if _, err := d.files(name); err != nil {
		return err
	}
	delete(d.f.fileSystem, name)
	return nil
}

// ListPaths treats keys ending in "/" as directories.
func (d *datalakeClient) ListPaths(_ context.Context, fileSystem, prefix string, recursive bool) ([]models.PathItem, error) {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("ListPaths", fileSystem, prefix, fmt.Sprint(recursive))

	files, err := d.files(fileSystem)
	if err != nil {
		return nil, err
	}
	items := []models.PathItem{}
	for _, name := range sortedKeys(files) {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(name, prefix), "/")
		if !recursive && strings.Contains(strings.TrimPrefix(rest, "/"), "/") {
			continue
		}
		items = append(items, models.PathItem{
			Name:          strings.TrimSuffix(name, "/"),
			IsDirectory:   strings.HasSuffix(name, "/"),
			ContentLength: int64(len(files[name])),
			LastModified:  Now.Format(time.RFC1123),
		})
	}
	return items, nil
}

func (d *datalakeClient) CreateDirectory(_ context.Context, fileSystem, path string) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("CreateDirectory", fileSystem, path)

	files, err := d.files(fileSystem)
	if err != nil {
		return err
	}
	files[strings.TrimSuffix(path, "/")+"/"] = nil
	return nil
}

func (d *datalakeClient) UploadFile(_ context.Context, fileSystem, path string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("UploadFile", fileSystem, path)

	files, err := d.files(fileSystem)
	if err != nil {
		return err
	}
	files[path] = data
	return nil
}

func (d *datalakeClient) DownloadFile(_ context.Context, fileSystem, path string, w io.Writer) (int64, error) {
	d.f.mu.Lock()
	d.f.record("DownloadFile", fileSystem, path)
	files, err := d.files(fileSystem)
	var data []byte
	var ok bool
	if err == nil {
		data, ok = files[path]
	}
	d.f.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, notFound("Path", path)
	}
	return io.Copy(w, bytes.NewReader(data))
}

func (d *datalakeClient) DeletePath(_ context.Context, fileSystem, path string) error {
	d.f.mu.Lock()
	defer d.f.mu.Unlock()
	d.f.record("DeletePath", fileSystem, path)

	files, err := d.files(fileSystem)
	if err != nil {
		return err
	}
	for _, key := range []string{path, strings.TrimSuffix(path, "/") + "/"} {
		if _, ok := files[key]; ok {
			delete(files, key)
			return nil
		}
	}
	return notFound("Path", path)
}

type tableClient struct {
	f *Factory
}

func entityKey(partitionKey, rowKey string) string {
	return partitionKey + "\x00" + rowKey
}

func (t *tableClient) rows(table string) (map[string]models.Entity, error) {
	rows, ok := t.f.tables[table]
	if !ok {
		return nil, notFound("Table", table)
	}
	return rows, nil
}

func (t *tableClient) ListTables(_ context.Context, filter string) ([]models.TableItem, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("ListTables", filter)

	items := []models.TableItem{}
	for _, name := range sortedKeys(t.f.tables) {
		items = append(items, models.TableItem{Name: name})
	}
	return items, nil
}

func (t *tableClient) CreateTable(_ context.Context, name string) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("CreateTable", name)

	if _, ok := t.f.tables[name]; ok {
		return conflict("Table", name)
	}
	t.f.tables[name] = map[string]models.Entity{}
	return nil
}

func (t *tableClient) DeleteTable(_ context.Context, name string) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("DeleteTable", name)

	if _, err := t.rows(name); err != nil {
		return err
	}
	delete(t.f.tables, name)
	return nil
}

// Query ignores filter; it only records it.
func (t *tableClient) Query(_ context.Context, table, filter string, top int32) ([]models.Entity, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("Query", table, filter, fmt.Sprint(top))

	rows, err := t.rows(table)
	if err != nil {
		return nil, err
	}
	entities := []models.Entity{}
	for _, key := range sortedKeys(rows) {
		if top > 0 && int32(len(entities)) >= top {
			break
		}
		entities = append(entities, rows[key])
	}
	return entities, nil
}

func (t *tableClient) GetEntity(_ context.Context, table, partitionKey, rowKey string) (models.Entity, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("GetEntity", table, partitionKey, rowKey)

	rows, err := t.rows(table)
	if err != nil {
		return nil, err
	}
	entity, ok := rows[entityKey(partitionKey, rowKey)]
	if !ok {
		return nil, notFound("Entity", partitionKey+"/"+rowKey)
	}
	return entity, nil
}

func (t *tableClient) InsertEntity(_ context.Context, table string, entity models.Entity) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("InsertEntity", table, entity.PartitionKey(), entity.RowKey())

	rows, err := t.rows(table)
	if err != nil {
		return err
	}
	key := entityKey(entity.PartitionKey(), entity.RowKey())
	if _, ok := rows[key]; ok {
		return conflict("Entity", entity.PartitionKey()+"/"+entity.RowKey())
	}
	rows[key] = entity
	return nil
}

func (t *tableClient) UpsertEntity(_ context.Context, table string, entity models.Entity) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("UpsertEntity", table, entity.PartitionKey(), entity.RowKey())

	rows, err := t.rows(table)
	if err != nil {
		return err
	}
	key := entityKey(entity.PartitionKey(), entity.RowKey())
	merged := models.Entity{}
	for k, v := range rows[key] {
		merged[k] = v
	}
	for k, v := range entity {
		merged[k] = v
	}
	rows[key] = merged
	return nil
}

func (t *tableClient) DeleteEntity(_ context.Context, table, partitionKey, rowKey string) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	t.f.record("DeleteEntity", table, partitionKey, rowKey)

	rows, err := t.rows(table)
	if err != nil {
		return err
	}
	key := entityKey(partitionKey, rowKey)
	if _, ok := rows[key]; !ok {
		return notFound("Entity", partitionKey+"/"+rowKey)
	}
	delete(rows, key)
	return nil
}
