package app

import (
	"context"
	"log"
	"time"

	"skill-hire/internal/config"
	"skill-hire/internal/database"
	dbpostgres "skill-hire/internal/database/postgres"
	"skill-hire/internal/infrastructure/cache"
	"skill-hire/internal/infrastructure/llm"
	"skill-hire/internal/infrastructure/persistence/postgres"
	"skill-hire/internal/infrastructure/queue"
	"skill-hire/internal/infrastructure/storage"
	"skill-hire/internal/pkg/jwt"
	"skill-hire/internal/quizgen"
	"skill-hire/internal/repository"
	"skill-hire/internal/usecase"
	"skill-hire/internal/usecase/account"
	"skill-hire/internal/ws"
)

// Container owns every long-lived dependency. Redis, MinIO and RabbitMQ are
// optional: without them caching is bypassed, resume upload answers 503 and
// generation runs in-process.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB     database.DB
	Redis  *cache.Redis
	Locker *cache.Locker
	Queue  *queue.RabbitMQ
	Store  *storage.MinIO
	JWT    jwt.Service
	Hub    *ws.Hub

	Auth          *usecase.Auth
	User          *usecase.User
	Skill         *usecase.Skill
	EmployeeSkill *usecase.EmployeeSkill
	Job           *usecase.Job
	Application   *usecase.Application
	QuizAssembly  *usecase.QuizAssembly
	QuizSession   *usecase.QuizSession
	Sweeper       *usecase.StaleQuizSweeper
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, DB: db}

	c.Redis = cache.NewRedis(cfg.Redis, logger)
	c.Locker = cache.NewLocker(c.Redis)

	q, err := queue.NewRabbitMQ(cfg.Queue, logger)
	if err != nil {
		logger.Printf("queue status=unavailable mode=in_process err=%v", err)
		q, _ = queue.NewRabbitMQ(config.QueueConfig{}, logger)
	}
	c.Queue = q

	var store usecase.ObjectStore
	m, err := storage.NewMinIO(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Printf("storage status=unavailable err=%v", err)
	} else {
		logger.Printf("storage status=ready bucket=%s", m.Bucket())
		c.Store = m
		store = m
	}

	c.JWT = jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	c.Hub = ws.NewHub(logger)
	notifier := ws.NewNotifier(c.Hub)

	userRepo := postgres.NewUserRepository(db)
	skillRepo := repository.NewPostgresSkillRepository(db)
	employeeSkillRepo := repository.NewPostgresEmployeeSkillRepository(db)
	jobRepo := repository.NewPostgresJobRepository(db)
	appRepo := repository.NewPostgresApplicationRepository(db)
	quizRepo := repository.NewPostgresQuizRepository(db)
	questionRepo := repository.NewPostgresQuizQuestionRepository(db)
	answerRepo := repository.NewPostgresQuizAnswerRepository(db)

	generator := quizgen.NewGenerator(llm.NewClient(cfg.LLM), logger)
	tracker := usecase.NewStatusTracker(appRepo, c.Queue, notifier, logger)

	accounts := account.NewService(userRepo)
	c.Auth = usecase.NewAuthUsecase(accounts, c.JWT)
	c.User = usecase.NewUserUsecase(accounts)
	c.Skill = usecase.NewSkillUsecase(skillRepo, c.Redis, logger)
	c.EmployeeSkill = usecase.NewEmployeeSkillUsecase(employeeSkillRepo)
	c.Job = usecase.NewJobUsecase(jobRepo, c.Redis, logger)
	c.Application = usecase.NewApplicationUsecase(appRepo, jobRepo, tracker, store, usecase.ApplicationOptions{
		MaxResumeBytes:  cfg.Storage.MaxResumeBytes,
		SignedURLExpiry: cfg.Storage.SignedURLExpiry,
	}, logger)
	c.QuizAssembly = usecase.NewQuizAssemblyUsecase(
		skillRepo, quizRepo, questionRepo, appRepo,
		generator, c.Locker, c.Queue, notifier,
		usecase.AssemblyOptions{
			DefaultQuestionsPerSkill: cfg.Quiz.DefaultQuestionsPerSkill,
			MaxQuestionsPerSkill:     cfg.Quiz.MaxQuestionsPerSkill,
			GenerationTimeout:        cfg.Quiz.GenerationTimeout,
		},
		logger,
	)
	c.QuizSession = usecase.NewQuizSessionUsecase(quizRepo, questionRepo, answerRepo, appRepo, tracker, c.Locker, logger)
	c.Sweeper = usecase.NewStaleQuizSweeper(quizRepo, c.QuizAssembly, c.Locker, usecase.SweeperOptions{
		StaleAfter: cfg.Quiz.StaleAfter,
		Interval:   cfg.Quiz.SweepInterval,
	}, logger)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.QuizAssembly != nil {
		c.QuizAssembly.Wait()
	}
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			c.Logger.Printf("queue close status=error err=%v", err)
		}
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
