package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BerniceZTT/bid_tracker/models"
	"github.com/BerniceZTT/bid_tracker/utils"
)

const (
	// 集合名
	ProjectsCollection = "projects"

	defaultSaveRetries = 3

	// 保存时先写入的临时集合后缀
	stagingSuffix = "_staging"
)

// mongoProject 带顺序号的项目文档
type mongoProject struct {
	Position             int `bson:"position"`
	models.ProjectRecord `bson:",inline"`
}

// MongoBackend 将项目集合保存到 MongoDB 集合
type MongoBackend struct {
	client  *mongo.Client
	coll    *mongo.Collection
	retries int
}

// OpenMongoBackend 连接 MongoDB 并返回存储后端
func OpenMongoBackend(ctx context.Context, uri, dbName string) (*MongoBackend, error) {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")

	backend := NewMongoBackend(client.Database(dbName).Collection(ProjectsCollection))
	backend.client = client
	return backend, nil
}

// NewMongoBackend 基于已有集合创建存储后端
func NewMongoBackend(coll *mongo.Collection) *MongoBackend {
	return &MongoBackend{coll: coll, retries: defaultSaveRetries}
}

// Name 后端名称
func (b *MongoBackend) Name() string {
	return "mongo:" + b.coll.Database().Name() + "." + b.coll.Name()
}

// Load 按保存顺序读取全部记录
func (b *MongoBackend) Load(ctx context.Context) ([]models.ProjectRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := b.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("获取项目列表失败: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProject
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("解析项目列表失败: %w", err)
	}

	records := make([]models.ProjectRecord, len(docs))
	for i, doc := range docs {
		records[i] = doc.ProjectRecord
	}
	return records, nil
}

// Save 先写入临时集合，再通过 renameCollection 覆盖目标集合，写入失败时原数据不变
func (b *MongoBackend) Save(ctx context.Context, records []models.ProjectRecord) error {
	if len(records) == 0 {
		return b.executeWithRetry(ctx, func() error {
			if _, err := b.coll.DeleteMany(ctx, bson.M{}); err != nil {
				return fmt.Errorf("清空项目集合失败: %w", err)
			}
			return nil
		})
	}

	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = mongoProject{Position: i, ProjectRecord: rec}
	}

	db := b.coll.Database()
	staging := db.Collection(b.coll.Name() + stagingSuffix)
	rename := bson.D{
		{Key: "renameCollection", Value: db.Name() + "." + staging.Name()},
		{Key: "to", Value: db.Name() + "." + b.coll.Name()},
		{Key: "dropTarget", Value: true},
	}

	return b.executeWithRetry(ctx, func() error {
		if err := staging.Drop(ctx); err != nil {
			return fmt.Errorf("清理临时集合失败: %w", err)
		}
		if _, err := staging.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("写入项目失败: %w", err)
		}
		if err := db.Client().Database("admin").RunCommand(ctx, rename).Err(); err != nil {
			return fmt.Errorf("替换项目集合失败: %w", err)
		}
		return nil
	})
}

// Close 关闭MongoDB连接
func (b *MongoBackend) Close() error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Disconnect(context.Background()); err != nil {
		utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
		return err
	}
	utils.Logger.Info().Msg("已断开MongoDB连接")
	return nil
}

// executeWithRetry 执行数据库操作，可重试的错误会延迟后重试
func (b *MongoBackend) executeWithRetry(ctx context.Context, operation func() error) error {
	retries := b.retries
	if retries <= 0 {
		retries = defaultSaveRetries
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(500*(i+1)) * time.Millisecond):
		}
	}

	return lastErr
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	// MongoDB可重试错误代码
	retryableCodes := map[int32]bool{
		6:     true, // HostUnreachable
		7:     true, // HostNotFound
		89:    true, // NetworkTimeout
		91:    true, // ShutdownInProgress
		189:   true, // PrimarySteppedDown
		10107: true, // NotMaster
		13436: true, // NotMasterNoSlaveOk
		11600: true, // InterruptedAtShutdown
		11602: true, // InterruptedDueToReplStateChange
		10058: true, // ConnectionReset
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[cmdErr.Code]
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) || isNetworkMessage(err)
}

// isNetworkMessage 检查错误信息是否为常见网络错误
func isNetworkMessage(err error) bool {
	errMsg := strings.ToLower(err.Error())
	networkErrors := []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"no reachable servers",
		"server selection error",
	}

	for _, ne := range networkErrors {
		if strings.Contains(errMsg, ne) {
			return true
		}
	}

	return false
}
